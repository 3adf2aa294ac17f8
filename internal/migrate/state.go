// File: internal/migrate/state.go
// Brief: Observed protocol state.

package migrate

import "context"

// State names a position in the migration protocol. States are observed
// by querying the control plane, never stored: every invocation
// reconstructs where the migration stands from live ownership and
// existence checks, which is what makes the steps idempotent and
// resumable.
type State string

const (
	StateUnvalidated        State = "UNVALIDATED"
	StateValidated          State = "VALIDATED"
	StateDetachedFromSource State = "DETACHED_FROM_SOURCE"
	StatePreparedOnTarget   State = "PREPARED_ON_TARGET"
	StateAttachedToTarget   State = "ATTACHED_TO_TARGET"
	StateVerified           State = "VERIFIED"
)

// ObserveState derives the protocol state from live queries. Two states
// are not independently observable from the control plane: synthesis has
// no side effects, so PREPARED_ON_TARGET reads as DETACHED_FROM_SOURCE,
// and VERIFIED requires the composite verify check, so plain ownership by
// the target reads as ATTACHED_TO_TARGET. Run Verify to prove the final
// state.
func (o *Orchestrator) ObserveState(ctx context.Context, p Params) (State, error) {
	exists, err := o.Inspector.ResourceExists(ctx, p.Resource)
	if err != nil {
		return "", NewStepError("observe", KindInspect, err)
	}
	if !exists {
		return StateUnvalidated, nil
	}
	owner, owned, err := o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return "", NewStepError("observe", KindInspect, err)
	}
	switch {
	case !owned:
		return StateDetachedFromSource, nil
	case owner == p.TargetStack:
		return StateAttachedToTarget, nil
	default:
		return StateValidated, nil
	}
}
