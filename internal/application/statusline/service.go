package statusline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// maxSessionBytes bounds what is read from a host's stdin payload.
const maxSessionBytes = 1 << 20

// Request carries one render invocation's inputs.
type Request struct {
	WorkingDir string
	// Mode is the explicit --mode flag; it wins over every other source.
	Mode     string
	ExitCode string
	Session  *domain.SessionContext
	Env      domain.EnvironmentView
}

// Service runs detect, collect and render for the render command.
type Service struct {
	Collector   ports.SnapshotCollector
	Detect      func(domain.EnvironmentView) domain.CapabilityProfile
	DefaultMode domain.RenderMode
	Logger      ports.Logger
}

// Render always returns a printable line. Failures degrade to blank
// segments and, at worst, to the idle label.
func (s *Service) Render(ctx context.Context, req Request) (line string) {
	defer func() {
		if r := recover(); r != nil {
			s.debug("render recovered", map[string]interface{}{"panic": fmt.Sprint(r)})
			line = domain.AppName
		}
	}()

	if s.Collector == nil || s.Detect == nil {
		return domain.AppName
	}

	caps := s.Detect(req.Env)
	mode := s.ResolveMode(req)
	snapshot := s.Collector.Collect(ctx, domain.SnapshotRequest{
		WorkingDir:   resolveWorkingDir(req),
		ModelLabel:   sessionModel(req.Session),
		LastExitCode: req.ExitCode,
	})
	s.debug("status snapshot collected", map[string]interface{}{
		"mode":    string(mode),
		"unicode": caps.SupportsUnicode,
		"color":   caps.SupportsColor,
		"class":   string(caps.TerminalClass),
	})
	return Render(snapshot, caps, mode)
}

// ResolveMode applies flag, then session payload, then the configured default.
// Unrecognised values fall back to the compact layout.
func (s *Service) ResolveMode(req Request) domain.RenderMode {
	raw := strings.TrimSpace(req.Mode)
	if raw == "" && req.Session != nil {
		raw = strings.TrimSpace(req.Session.Statusline.Mode)
	}
	if raw == "" {
		if s.DefaultMode != "" {
			return s.DefaultMode
		}
		return domain.ModeExtended
	}
	mode, ok := domain.ParseRenderMode(raw)
	if !ok {
		s.debug("unknown render mode", map[string]interface{}{"mode": raw})
	}
	return mode
}

// ReadSession decodes the optional JSON payload a host pipes on stdin.
// An empty payload yields nil without error.
func ReadSession(r io.Reader) (*domain.SessionContext, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSessionBytes))
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var session domain.SessionContext
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func resolveWorkingDir(req Request) string {
	if req.WorkingDir != "" {
		return req.WorkingDir
	}
	if req.Session != nil && req.Session.CWD != "" {
		return req.Session.CWD
	}
	wd, _ := os.Getwd()
	return wd
}

func sessionModel(session *domain.SessionContext) string {
	if session == nil {
		return ""
	}
	return session.ModelLabel()
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}
