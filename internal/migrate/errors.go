// File: internal/migrate/errors.go
// Brief: Step error taxonomy.

package migrate

import (
	"errors"
	"fmt"
)

// Kind classifies a step failure. Every failure surfaced by a step
// carries exactly one kind; VerificationFailed is always distinct from
// the mutating action's own failure because the control plane may report
// success while the observed state disagrees.
type Kind string

const (
	KindPrereqMissing  Kind = "PrereqMissing"
	KindNotFound       Kind = "NotFound"
	KindReconciliation Kind = "ReconciliationError"
	KindSynthesis      Kind = "SynthesisError"
	KindImport         Kind = "ImportError"
	KindVerification   Kind = "VerificationFailed"

	// KindInspect covers read-only queries against the control plane
	// failing outright, before any precondition could be evaluated.
	KindInspect Kind = "InspectError"
)

// StepError is the failure type every step returns. All step failures
// are fatal to the invoking sequence; re-invoking the same step after
// the cause is fixed is safe.
type StepError struct {
	Step string
	Kind Kind
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepError(step string, kind Kind, format string, args ...any) *StepError {
	return &StepError{Step: step, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// NewStepError wraps err with a step name and kind.
func NewStepError(step string, kind Kind, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// KindOf extracts the failure kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
