// File: internal/migrate/steps.go
// Brief: The five migration steps.

// Package migrate implements the bucket ownership handoff protocol: five
// idempotent steps that move a retained bucket from a source stack's
// declaration to a target stack's declaration while the physical bucket
// and its contents stay untouched. Each step checks live state first and
// treats "already in the desired state" as success, so any step can be
// re-invoked safely after an interruption. Sequencing is the caller's
// job; the steps themselves only guard their own preconditions and
// postconditions.
package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

// Step names, as they appear in outcomes, journal entries, and errors.
const (
	StepValidate      = "validate"
	StepDetachSource  = "detach-source"
	StepPrepareTarget = "prepare-target"
	StepImport        = "import"
	StepVerify        = "verify"
)

// Params identifies one migration: the physical resource and the two
// stack declarations between which ownership moves.
type Params struct {
	Resource    string
	SourceStack string
	TargetStack string
	// Mapping binds the target declaration's logical resource reference
	// to the physical resource identifier during import.
	Mapping stackengine.ResourceMapping
}

// Outcome reports what a successful step observed and did.
type Outcome struct {
	Step string
	// Changed is false when the step was a no-op because the observed
	// state already matched the step's goal.
	Changed bool
	// Owner is the stack observed to own the resource after the step,
	// empty when no stack owns it.
	Owner string
	// ObjectCount is the resource's item count when the step measured
	// it, -1 otherwise.
	ObjectCount int
	// Items holds the listed item identifiers when the step took an
	// inventory.
	Items []string
	// Template holds the rendered declaration body for synthesis steps.
	Template string
	Notes    []string
	Warnings []string
}

func newOutcome(step string) *Outcome {
	return &Outcome{Step: step, ObjectCount: -1}
}

func (o *Outcome) notef(format string, args ...any) {
	o.Notes = append(o.Notes, fmt.Sprintf(format, args...))
}

func (o *Outcome) warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Orchestrator drives the protocol against an Engine and an Inspector.
// It holds no migration state of its own.
type Orchestrator struct {
	Engine    stackengine.Engine
	Inspector stackengine.Inspector
	Log       *zap.Logger
}

// New returns an orchestrator over the given collaborators. A nil logger
// is replaced with a no-op one.
func New(engine stackengine.Engine, inspector stackengine.Inspector, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{Engine: engine, Inspector: inspector, Log: log}
}

// Validate confirms the physical resource exists and reports who owns it.
// Read-only. A source stack that does not own the resource is a warning,
// not a failure: validation may run before any ownership exists.
func (o *Orchestrator) Validate(ctx context.Context, p Params) (*Outcome, error) {
	out := newOutcome(StepValidate)
	exists, err := o.Inspector.ResourceExists(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepValidate, KindInspect, err)
	}
	if !exists {
		return nil, stepError(StepValidate, KindNotFound, "resource %q does not exist", p.Resource)
	}
	out.notef("resource %q exists and is reachable", p.Resource)

	owner, owned, err := o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepValidate, KindInspect, err)
	}
	switch {
	case owned && owner == p.SourceStack:
		out.Owner = owner
		out.notef("owned by source stack %s", p.SourceStack)
	case owned:
		out.Owner = owner
		out.warnf("owned by %s, not the expected source stack %s", owner, p.SourceStack)
	default:
		out.warnf("no stack currently owns %q", p.Resource)
	}

	contents, err := o.Inspector.ListContents(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepValidate, KindInspect, err)
	}
	out.ObjectCount = len(contents)
	out.Items = contents
	out.notef("pre-migration inventory: %d items", len(contents))
	o.Log.Info("validate complete",
		zap.String("resource", p.Resource),
		zap.String("owner", out.Owner),
		zap.Int("objects", out.ObjectCount))
	return out, nil
}

// DetachFromSource removes the resource from the source declaration.
// Already-detached is a no-op success. After a real reconcile the
// ownership is re-queried; the source still owning the resource is a
// VerificationFailed, fatal and never retried here, because a partially
// failed reconcile needs human inspection.
func (o *Orchestrator) DetachFromSource(ctx context.Context, p Params) (*Outcome, error) {
	out := newOutcome(StepDetachSource)
	owner, owned, err := o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepDetachSource, KindInspect, err)
	}
	if !owned || owner != p.SourceStack {
		out.Owner = owner
		out.notef("source stack %s does not own %q; nothing to detach", p.SourceStack, p.Resource)
		return out, nil
	}

	variant := stackengine.DeclarationVariant{ExcludeResource: true}
	o.Log.Info("reconciling source without resource",
		zap.String("stack", p.SourceStack),
		zap.String("variant", variant.String()))
	if err := o.Engine.Reconcile(ctx, p.SourceStack, variant); err != nil {
		return nil, NewStepError(StepDetachSource, KindReconciliation, err)
	}

	owner, owned, err = o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepDetachSource, KindInspect, err)
	}
	if owned && owner == p.SourceStack {
		return nil, stepError(StepDetachSource, KindVerification,
			"reconcile reported success but %s still owns %q", p.SourceStack, p.Resource)
	}
	out.Changed = true
	out.Owner = owner
	out.notef("source stack %s released %q", p.SourceStack, p.Resource)
	return out, nil
}

// PrepareTarget renders the target declaration with the import slot
// included, without deploying. Catches configuration errors before any
// mutating call; the rendering itself is the only side effect.
func (o *Orchestrator) PrepareTarget(ctx context.Context, p Params) (*Outcome, error) {
	out := newOutcome(StepPrepareTarget)
	variant := stackengine.DeclarationVariant{IncludeForImport: true}
	body, err := o.Engine.Synthesize(ctx, p.TargetStack, variant)
	if err != nil {
		return nil, NewStepError(StepPrepareTarget, KindSynthesis, err)
	}
	out.Template = body
	out.notef("synthesized target declaration for %s (%d bytes)", p.TargetStack, len(body))
	return out, nil
}

// ImportResource attaches the resource to the target declaration via the
// engine's import operation. Preconditions: the resource exists and is
// owned by no stack. Target already owning it is a no-op success; any
// other stack owning it is an ImportError rather than a silent
// double-own. Ownership is re-verified afterward.
func (o *Orchestrator) ImportResource(ctx context.Context, p Params) (*Outcome, error) {
	out := newOutcome(StepImport)
	exists, err := o.Inspector.ResourceExists(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepImport, KindInspect, err)
	}
	if !exists {
		return nil, stepError(StepImport, KindNotFound, "resource %q does not exist", p.Resource)
	}
	owner, owned, err := o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepImport, KindInspect, err)
	}
	if owned && owner == p.TargetStack {
		out.Owner = owner
		out.notef("target stack %s already owns %q; nothing to import", p.TargetStack, p.Resource)
		return out, nil
	}
	if owned {
		return nil, stepError(StepImport, KindImport,
			"resource %q is still owned by %s; detach it from the source first", p.Resource, owner)
	}

	o.Log.Info("importing resource",
		zap.String("stack", p.TargetStack),
		zap.Strings("mapping", p.Mapping.Pairs()))
	if err := o.Engine.ImportExisting(ctx, p.TargetStack, p.Mapping); err != nil {
		return nil, NewStepError(StepImport, KindImport, err)
	}

	owner, owned, err = o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepImport, KindInspect, err)
	}
	if !owned || owner != p.TargetStack {
		return nil, stepError(StepImport, KindVerification,
			"import reported success but %s does not own %q (owner: %s)", p.TargetStack, p.Resource, orNone(owner))
	}
	out.Changed = true
	out.Owner = owner
	out.notef("target stack %s now owns %q", p.TargetStack, p.Resource)
	return out, nil
}

// Verify proves the handoff: the target owns the resource, the source
// does not, the resource is reachable, and the item count is reported for
// manual comparison against the pre-migration inventory. No byte-level
// content proof is attempted; presence and count only.
func (o *Orchestrator) Verify(ctx context.Context, p Params) (*Outcome, error) {
	out := newOutcome(StepVerify)
	owner, owned, err := o.Inspector.ResourceOwner(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepVerify, KindInspect, err)
	}
	if !owned || owner != p.TargetStack {
		return nil, stepError(StepVerify, KindVerification,
			"expected %s to own %q but owner is %s", p.TargetStack, p.Resource, orNone(owner))
	}
	if owner == p.SourceStack {
		return nil, stepError(StepVerify, KindVerification,
			"source stack %s still owns %q", p.SourceStack, p.Resource)
	}
	out.Owner = owner
	out.notef("ownership confirmed: %s", owner)

	exists, err := o.Inspector.ResourceExists(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepVerify, KindInspect, err)
	}
	if !exists {
		return nil, stepError(StepVerify, KindVerification,
			"resource %q is no longer reachable", p.Resource)
	}
	contents, err := o.Inspector.ListContents(ctx, p.Resource)
	if err != nil {
		return nil, NewStepError(StepVerify, KindInspect, err)
	}
	out.ObjectCount = len(contents)
	out.Items = contents
	out.notef("post-migration inventory: %d items (diff manually against the pre-migration count)", len(contents))
	o.Log.Info("verify complete",
		zap.String("resource", p.Resource),
		zap.String("owner", owner),
		zap.Int("objects", out.ObjectCount))
	return out, nil
}

func orNone(owner string) string {
	if owner == "" {
		return "none"
	}
	return owner
}
