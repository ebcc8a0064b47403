// Package patcher runs optimize steps with per-step failure isolation.
package patcher

import (
	"fmt"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// Patcher applies an ordered list of independent steps. A failing step is
// recorded and the remaining steps still run; nothing is rolled back.
type Patcher struct {
	// DryRun reports steps that need work as planned without applying them.
	DryRun bool
	Logger ports.Logger
}

// ApplyAll runs steps with the zero Patcher.
func ApplyAll(steps []domain.PatchStep) domain.PatchReport {
	return (&Patcher{}).ApplyAll(steps)
}

// ApplyAll checks each step and applies the ones that are not yet satisfied.
func (p *Patcher) ApplyAll(steps []domain.PatchStep) domain.PatchReport {
	var report domain.PatchReport
	for _, step := range steps {
		result := p.run(step)
		p.log(result)
		report.Record(result)
	}
	return report
}

// Verify runs only the idempotency checks. Steps that would change
// something are reported as planned.
func Verify(steps []domain.PatchStep) domain.PatchReport {
	return (&Patcher{DryRun: true}).ApplyAll(steps)
}

func (p *Patcher) run(step domain.PatchStep) domain.StepResult {
	result := domain.StepResult{ID: step.ID}
	if satisfied(step) {
		result.Outcome = domain.OutcomeAlreadySatisfied
		return result
	}
	if p.DryRun {
		result.Outcome = domain.OutcomePlanned
		return result
	}

	change, err := apply(step)
	result.Change = change
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}
	result.Outcome = domain.OutcomeApplied
	return result
}

// satisfied treats a missing or panicking check as "needs work" so the
// apply boundary gets to report the problem.
func satisfied(step domain.PatchStep) (ok bool) {
	if step.IdempotencyCheck == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return step.IdempotencyCheck()
}

func apply(step domain.PatchStep) (change domain.AppliedChange, err error) {
	if step.Apply == nil {
		return domain.AppliedChange{}, fmt.Errorf("step %s has no apply function", step.ID)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s panicked: %v", step.ID, r)
		}
	}()
	change, err = step.Apply()
	if err != nil && err.Error() == "" {
		err = fmt.Errorf("step %s failed", step.ID)
	}
	return change, err
}

func (p *Patcher) log(result domain.StepResult) {
	if p.Logger == nil {
		return
	}
	fields := map[string]interface{}{"step": result.ID, "outcome": string(result.Outcome)}
	if result.Outcome == domain.OutcomeFailed {
		p.Logger.Warn("patch step failed", map[string]interface{}{"step": result.ID, "error": result.Error})
		return
	}
	p.Logger.Debug("patch step finished", fields)
}
