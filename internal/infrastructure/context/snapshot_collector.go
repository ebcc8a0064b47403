package contextcollector

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.\-]+)?)`)

// DefaultVersionCommand reports the version of the host CLI.
var DefaultVersionCommand = []string{"claude", "--version"}

// SnapshotCollector implements ports.SnapshotCollector. Every fact goes
// through the cache with its own key and TTL, and a failing fact only blanks
// its own field.
type SnapshotCollector struct {
	cache          ports.FactCache
	runner         ports.CommandRunner
	cfg            domain.Config
	versionCommand []string
	logger         ports.Logger
}

// NewSnapshotCollector wires a collector. logger may be nil.
func NewSnapshotCollector(cache ports.FactCache, runner ports.CommandRunner, cfg domain.Config, logger ports.Logger) *SnapshotCollector {
	command := cfg.Statusline.VersionCommand
	if command == nil {
		command = DefaultVersionCommand
	}
	return &SnapshotCollector{
		cache:          cache,
		runner:         runner,
		cfg:            cfg,
		versionCommand: command,
		logger:         logger,
	}
}

// Collect gathers what it can and blanks the rest.
func (c *SnapshotCollector) Collect(ctx context.Context, req domain.SnapshotRequest) domain.StatusSnapshot {
	dir := req.WorkingDir
	return domain.StatusSnapshot{
		ModelLabel: c.fetch(domain.FactModelLabel, "", func() (string, error) {
			return c.modelLabel(req), nil
		}),
		ToolVersion: c.fetch(domain.FactVersion, "", func() (string, error) {
			return c.toolVersion(ctx)
		}),
		DirectoryName: c.fetch(domain.FactDirectory, dir, func() (string, error) {
			return DirectoryName(dir), nil
		}),
		VCSBranch: c.fetch(domain.FactVCSBranch, dir, func() (string, error) {
			return gitBranch(ctx, c.runner, dir)
		}),
		VCSStatusSummary: c.fetch(domain.FactVCSStatus, dir, func() (string, error) {
			return gitStatusSummary(ctx, c.runner, dir)
		}),
		ActiveEnvironmentMarker: c.fetch(domain.FactMarker, dir, func() (string, error) {
			return ActiveMarker(dir)
		}),
		LastExitCode: c.fetch(domain.FactExitCode, "", func() (string, error) {
			return normalizeExitCode(req.LastExitCode), nil
		}),
	}
}

// CacheKey scopes directory-dependent facts by working directory so two
// projects never share a branch or marker.
func CacheKey(fact domain.Fact, scope string) string {
	if scope == "" {
		return string(fact)
	}
	return string(fact) + "@" + scope
}

func (c *SnapshotCollector) fetch(fact domain.Fact, scope string, compute func() (string, error)) (value string) {
	key := CacheKey(fact, scope)
	defer func() {
		if r := recover(); r != nil {
			c.debug("fact collection panicked", map[string]interface{}{"key": key, "panic": fmt.Sprint(r)})
			value = ""
		}
	}()
	return c.cache.GetOrRefresh(key, c.cfg.TTLFor(fact), compute)
}

func (c *SnapshotCollector) modelLabel(req domain.SnapshotRequest) string {
	if label := strings.TrimSpace(req.ModelLabel); label != "" {
		return label
	}
	return strings.TrimSpace(c.cfg.Statusline.ModelLabel)
}

func (c *SnapshotCollector) toolVersion(ctx context.Context) (string, error) {
	if len(c.versionCommand) == 0 {
		return "", nil
	}
	out, err := c.runner.Run(ctx, "", c.versionCommand[0], c.versionCommand[1:]...)
	if err != nil {
		return "", err
	}
	return ParseVersion(out)
}

// ParseVersion extracts the first version-looking token of a --version output.
func ParseVersion(out string) (string, error) {
	match := versionPattern.FindStringSubmatch(out)
	if match == nil {
		return "", domain.ErrNoVersion
	}
	return match[1], nil
}

// normalizeExitCode hides successful and unparsable exit codes.
func normalizeExitCode(raw string) string {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}

func (c *SnapshotCollector) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

var _ ports.SnapshotCollector = (*SnapshotCollector)(nil)
