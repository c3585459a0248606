// Package gate implements the deferred fail-fast policy: step outcomes are
// collected while the pipeline keeps running, and a single final check
// decides whether the run fails.
package gate

import (
	"fmt"

	"github.com/bkyoung/tfpr/internal/domain"
)

// Evaluate checks the recorded step outcomes and returns a non-nil error when
// the plan step failed. Later steps may already have executed by the time the
// gate runs; the run is still marked failed.
func Evaluate(outcomes domain.StepOutcomes) error {
	if outcomes.Plan.Failed() {
		return fmt.Errorf("gate: terraform plan step failed")
	}
	return nil
}

// EvaluateStrict additionally fails the run when any earlier terraform step
// failed, not just the plan step. Used by `tfpr run` before apply.
func EvaluateStrict(outcomes domain.StepOutcomes) error {
	steps := []struct {
		name    string
		outcome domain.Outcome
	}{
		{"fmt", outcomes.Fmt},
		{"init", outcomes.Init},
		{"validate", outcomes.Validate},
		{"plan", outcomes.Plan},
	}

	for _, step := range steps {
		if step.outcome.Failed() {
			return fmt.Errorf("gate: terraform %s step failed", step.name)
		}
	}
	return nil
}
