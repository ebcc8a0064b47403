package patcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// StepSet builds the ordered steps for a project root and target OS.
type StepSet func(root, targetOS string) []domain.PatchStep

// Request selects the project and mode of one optimize run.
type Request struct {
	// Start is where project root discovery begins; Root skips discovery.
	Start    string
	Root     string
	TargetOS string
	DryRun   bool
}

// Service runs optimize end to end and records the outcome.
type Service struct {
	FindRoot func(start string) (string, error)
	Steps    StepSet
	History  ports.PatchHistoryRepository
	Logger   ports.Logger
	Now      func() time.Time
}

// Optimize resolves the project root, runs every step and saves the record.
// A partial report is a normal result; only an unresolvable root or
// unwired service is an error.
func (s *Service) Optimize(ctx context.Context, req Request) (domain.PatchRecord, error) {
	if s.Steps == nil || (req.Root == "" && s.FindRoot == nil) {
		return domain.PatchRecord{}, errors.New("patcher.Service dependencies not satisfied")
	}
	if err := ctx.Err(); err != nil {
		return domain.PatchRecord{}, err
	}

	root := req.Root
	if root == "" {
		found, err := s.FindRoot(req.Start)
		if err != nil {
			return domain.PatchRecord{}, err
		}
		root = found
	}

	p := &Patcher{DryRun: req.DryRun, Logger: s.Logger}
	report := p.ApplyAll(s.Steps(root, req.TargetOS))

	record := domain.PatchRecord{
		RunID:     uuid.NewString(),
		Timestamp: s.now(),
		Root:      root,
		Target:    req.TargetOS,
		DryRun:    req.DryRun,
		Status:    report.Status(),
		Steps:     report.Steps,
	}
	if s.History != nil {
		if err := s.History.Save(record); err != nil && s.Logger != nil {
			s.Logger.Warn("patch history save failed", map[string]interface{}{"error": err.Error(), "path": s.History.Path()})
		}
	}
	if s.Logger != nil {
		s.Logger.Info("optimize finished", map[string]interface{}{
			"run_id":  record.RunID,
			"root":    root,
			"status":  string(record.Status),
			"applied": report.AppliedCount(),
			"failed":  report.FailedCount(),
		})
	}
	return record, nil
}

// Verify reports which steps would change something, without writing.
func (s *Service) Verify(root, targetOS string) domain.PatchReport {
	if s.Steps == nil {
		return domain.PatchReport{}
	}
	return Verify(s.Steps(root, targetOS))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
