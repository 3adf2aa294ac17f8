// File: internal/migrate/driver.go
// Brief: Canonical step sequence.

package migrate

import "context"

// StepFunc is the common shape of the five steps.
type StepFunc func(ctx context.Context, p Params) (*Outcome, error)

// Steps returns the protocol's canonical order. Each step is also
// independently invocable; this order is the sequencing policy the
// external driver enforces.
func (o *Orchestrator) Steps() []StepFunc {
	return []StepFunc{
		o.Validate,
		o.DetachFromSource,
		o.PrepareTarget,
		o.ImportResource,
		o.Verify,
	}
}

// Sequence runs validate, detach-source, prepare-target, import, and
// verify in order, halting at the first failure. Completed outcomes are
// returned alongside the error so the caller can report how far the run
// got; re-invoking Sequence after fixing the cause is safe because every
// step is idempotent.
func (o *Orchestrator) Sequence(ctx context.Context, p Params) ([]*Outcome, error) {
	var outcomes []*Outcome
	for _, step := range o.Steps() {
		out, err := step(ctx, p)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
