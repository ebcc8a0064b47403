package domain

import "fmt"

// AppliedChange describes what a patch step wrote.
type AppliedChange struct {
	Path    string `json:"path,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// PatchStep is one independent, idempotent mutation of an external artifact.
type PatchStep struct {
	ID string
	// Apply performs the mutation.
	Apply func() (AppliedChange, error)
	// IdempotencyCheck returns true when the artifact already reflects the
	// desired end state.
	IdempotencyCheck func() bool
}

// StepOutcome is the result class of a single step.
type StepOutcome string

const (
	OutcomeApplied          StepOutcome = "applied"
	OutcomeAlreadySatisfied StepOutcome = "already-satisfied"
	OutcomeFailed           StepOutcome = "failed"
	// OutcomePlanned is only produced by dry runs.
	OutcomePlanned StepOutcome = "planned"
)

// StepResult records one step of a patch run.
type StepResult struct {
	ID      string        `json:"id"`
	Outcome StepOutcome   `json:"outcome"`
	Error   string        `json:"error,omitempty"`
	Change  AppliedChange `json:"change"`
}

// PatchStatus is the aggregate outcome of a patch run.
type PatchStatus string

const (
	PatchSuccess PatchStatus = "success"
	PatchPartial PatchStatus = "partial"
)

// PatchReport is built incrementally while steps run and is never discarded
// on partial failure.
type PatchReport struct {
	Steps []StepResult `json:"steps"`
}

// Record appends a step result.
func (r *PatchReport) Record(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// Status is success only when no step failed.
func (r PatchReport) Status() PatchStatus {
	if r.FailedCount() > 0 {
		return PatchPartial
	}
	return PatchSuccess
}

// FailedCount returns the number of failed steps.
func (r PatchReport) FailedCount() int {
	return r.count(OutcomeFailed)
}

// AppliedCount returns the number of steps that wrote something.
func (r PatchReport) AppliedCount() int {
	return r.count(OutcomeApplied)
}

// Summary is a one-line description of the aggregate result.
func (r PatchReport) Summary() string {
	summary := fmt.Sprintf("%s: %d applied, %d already satisfied, %d failed",
		r.Status(),
		r.count(OutcomeApplied),
		r.count(OutcomeAlreadySatisfied),
		r.count(OutcomeFailed))
	if planned := r.count(OutcomePlanned); planned > 0 {
		summary += fmt.Sprintf(", %d planned", planned)
	}
	return summary
}

func (r PatchReport) count(outcome StepOutcome) int {
	n := 0
	for _, step := range r.Steps {
		if step.Outcome == outcome {
			n++
		}
	}
	return n
}
