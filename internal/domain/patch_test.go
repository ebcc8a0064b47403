package domain_test

import (
	"testing"

	"github.com/doeshing/promptline/internal/domain"
)

func TestPatchReportCounts(t *testing.T) {
	var report domain.PatchReport
	report.Record(domain.StepResult{ID: "statusline-runner", Outcome: domain.OutcomeApplied})
	report.Record(domain.StepResult{ID: "hooks", Outcome: domain.OutcomeFailed, Error: "permission denied"})
	report.Record(domain.StepResult{ID: "settings", Outcome: domain.OutcomeAlreadySatisfied})

	if report.AppliedCount() != 1 || report.FailedCount() != 1 {
		t.Fatalf("counts = %d applied, %d failed", report.AppliedCount(), report.FailedCount())
	}
	if report.Status() != domain.PatchPartial {
		t.Fatalf("Status() = %s, want partial", report.Status())
	}
	if got, want := report.Summary(), "partial: 1 applied, 1 already satisfied, 1 failed"; got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}
