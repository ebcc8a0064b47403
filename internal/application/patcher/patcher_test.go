package patcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/promptline/internal/domain"
)

// flagStep is satisfied once it has been applied.
func flagStep(id string, applied *bool) domain.PatchStep {
	return domain.PatchStep{
		ID:               id,
		IdempotencyCheck: func() bool { return *applied },
		Apply: func() (domain.AppliedChange, error) {
			*applied = true
			return domain.AppliedChange{Path: id, Summary: "done"}, nil
		},
	}
}

func outcomes(report domain.PatchReport) []domain.StepOutcome {
	var out []domain.StepOutcome
	for _, step := range report.Steps {
		out = append(out, step.Outcome)
	}
	return out
}

func TestApplyAllSecondRunIsAlreadySatisfied(t *testing.T) {
	var a, b, c bool
	steps := []domain.PatchStep{flagStep("a", &a), flagStep("b", &b), flagStep("c", &c)}

	first := ApplyAll(steps)
	if diff := cmp.Diff([]domain.StepOutcome{domain.OutcomeApplied, domain.OutcomeApplied, domain.OutcomeApplied}, outcomes(first)); diff != "" {
		t.Fatalf("first run (-want +got):\n%s", diff)
	}

	second := ApplyAll(steps)
	want := []domain.StepOutcome{domain.OutcomeAlreadySatisfied, domain.OutcomeAlreadySatisfied, domain.OutcomeAlreadySatisfied}
	if diff := cmp.Diff(want, outcomes(second)); diff != "" {
		t.Fatalf("second run (-want +got):\n%s", diff)
	}
	if second.Status() != domain.PatchSuccess {
		t.Fatalf("status = %s", second.Status())
	}
}

func TestApplyAllIsolatesMiddleFailure(t *testing.T) {
	var a, c bool
	steps := []domain.PatchStep{
		flagStep("runner", &a),
		{
			ID:               "hooks",
			IdempotencyCheck: func() bool { return false },
			Apply: func() (domain.AppliedChange, error) {
				return domain.AppliedChange{}, errors.New("permission denied")
			},
		},
		flagStep("settings", &c),
	}

	report := ApplyAll(steps)
	want := []domain.StepOutcome{domain.OutcomeApplied, domain.OutcomeFailed, domain.OutcomeApplied}
	if diff := cmp.Diff(want, outcomes(report)); diff != "" {
		t.Fatalf("outcomes (-want +got):\n%s", diff)
	}
	if report.FailedCount() != 1 || report.Steps[1].Error != "permission denied" {
		t.Fatalf("unexpected failure record: %+v", report.Steps[1])
	}
	if report.Status() != domain.PatchPartial {
		t.Fatalf("status = %s, want partial", report.Status())
	}
	if !a || !c {
		t.Fatal("sibling steps were not applied")
	}
}

func TestApplyAllRecoversPanics(t *testing.T) {
	steps := []domain.PatchStep{
		{
			ID:               "check-panics",
			IdempotencyCheck: func() bool { panic("bad check") },
			Apply:            func() (domain.AppliedChange, error) { return domain.AppliedChange{}, nil },
		},
		{
			ID:               "apply-panics",
			IdempotencyCheck: func() bool { return false },
			Apply:            func() (domain.AppliedChange, error) { panic("bad apply") },
		},
		{ID: "no-apply"},
	}
	report := ApplyAll(steps)
	want := []domain.StepOutcome{domain.OutcomeApplied, domain.OutcomeFailed, domain.OutcomeFailed}
	if diff := cmp.Diff(want, outcomes(report)); diff != "" {
		t.Fatalf("outcomes (-want +got):\n%s", diff)
	}
	for _, step := range report.Steps[1:] {
		if step.Error == "" {
			t.Fatalf("failed step %s has empty error", step.ID)
		}
	}
}

func TestApplyAllEmptyErrorMessageIsFilled(t *testing.T) {
	report := ApplyAll([]domain.PatchStep{{
		ID:               "quiet",
		IdempotencyCheck: func() bool { return false },
		Apply:            func() (domain.AppliedChange, error) { return domain.AppliedChange{}, errors.New("") },
	}})
	if report.Steps[0].Error == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestDryRunPlansWithoutApplying(t *testing.T) {
	var a bool
	done := true
	steps := []domain.PatchStep{flagStep("a", &a), flagStep("b", &done)}

	report := (&Patcher{DryRun: true}).ApplyAll(steps)
	want := []domain.StepOutcome{domain.OutcomePlanned, domain.OutcomeAlreadySatisfied}
	if diff := cmp.Diff(want, outcomes(report)); diff != "" {
		t.Fatalf("outcomes (-want +got):\n%s", diff)
	}
	if a {
		t.Fatal("dry run applied a step")
	}
	if got := report.Summary(); got != "success: 0 applied, 1 already satisfied, 0 failed, 1 planned" {
		t.Fatalf("summary = %q", got)
	}
}

type memoryHistory struct {
	saved []domain.PatchRecord
	err   error
}

func (m *memoryHistory) Save(rec domain.PatchRecord) error {
	m.saved = append(m.saved, rec)
	return m.err
}

func (m *memoryHistory) Records(int) ([]domain.PatchRecord, error) { return m.saved, nil }
func (m *memoryHistory) Path() string                              { return "memory" }

func TestServiceOptimizeRecordsRun(t *testing.T) {
	var applied bool
	history := &memoryHistory{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var gotRoot, gotTarget string
	svc := &Service{
		FindRoot: func(start string) (string, error) { return start + "/root", nil },
		Steps: func(root, targetOS string) []domain.PatchStep {
			gotRoot, gotTarget = root, targetOS
			return []domain.PatchStep{flagStep("only", &applied)}
		},
		History: history,
		Now:     func() time.Time { return now },
	}

	record, err := svc.Optimize(context.Background(), Request{Start: "/work", TargetOS: "windows"})
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if gotRoot != "/work/root" || gotTarget != "windows" {
		t.Fatalf("steps built for %q/%q", gotRoot, gotTarget)
	}
	if record.RunID == "" || !record.Timestamp.Equal(now) || record.Status != domain.PatchSuccess {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(history.saved) != 1 || history.saved[0].RunID != record.RunID {
		t.Fatalf("history not saved: %+v", history.saved)
	}

	verify := svc.Verify("/work/root", "windows")
	if verify.Steps[0].Outcome != domain.OutcomeAlreadySatisfied {
		t.Fatalf("verify after apply = %+v", verify.Steps)
	}
}

func TestServiceOptimizeRootNotFound(t *testing.T) {
	svc := &Service{
		FindRoot: func(string) (string, error) { return "", domain.ErrProjectRootNotFound },
		Steps:    func(string, string) []domain.PatchStep { return nil },
	}
	if _, err := svc.Optimize(context.Background(), Request{Start: "/tmp"}); !errors.Is(err, domain.ErrProjectRootNotFound) {
		t.Fatalf("err = %v, want ErrProjectRootNotFound", err)
	}
	if _, err := (&Service{}).Optimize(context.Background(), Request{}); err == nil {
		t.Fatal("expected dependency error")
	}
}

func TestServiceOptimizeHistoryFailureIsNotFatal(t *testing.T) {
	var applied bool
	svc := &Service{
		Steps:   func(string, string) []domain.PatchStep { return []domain.PatchStep{flagStep("x", &applied)} },
		History: &memoryHistory{err: errors.New("disk full")},
	}
	if _, err := svc.Optimize(context.Background(), Request{Root: "/work"}); err != nil {
		t.Fatalf("history failure surfaced: %v", err)
	}
}
