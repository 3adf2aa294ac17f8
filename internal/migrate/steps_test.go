package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

const (
	testBucket = "demo-bucket"
	stackA     = "StackA"
	stackB     = "StackB"
)

func testParams() Params {
	return Params{
		Resource:    testBucket,
		SourceStack: stackA,
		TargetStack: stackB,
		Mapping:     stackengine.ResourceMapping{"ImportedResource": testBucket},
	}
}

func seededMemory(t *testing.T) *stackengine.Memory {
	t.Helper()
	mem := stackengine.NewMemory(testBucket)
	mem.Seed(stackA, "a.dat", "b.dat", "c.dat", "d.dat", "e.dat")
	return mem
}

func newTestOrchestrator(mem *stackengine.Memory) *Orchestrator {
	return New(mem, mem, nil)
}

func mustOwner(t *testing.T, mem *stackengine.Memory) (string, bool) {
	t.Helper()
	owner, owned, err := mem.ResourceOwner(context.Background(), testBucket)
	if err != nil {
		t.Fatalf("ResourceOwner: %v", err)
	}
	return owner, owned
}

func TestValidateOK(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	out, err := o.Validate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.Owner != stackA {
		t.Fatalf("owner=%q want %q", out.Owner, stackA)
	}
	if out.ObjectCount != 5 {
		t.Fatalf("objects=%d want 5", out.ObjectCount)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", out.Warnings)
	}
}

func TestValidateNotFound(t *testing.T) {
	mem := stackengine.NewMemory(testBucket)
	o := newTestOrchestrator(mem)
	_, err := o.Validate(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected error for nonexistent resource")
	}
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("kind=%q want %q", got, KindNotFound)
	}
}

func TestValidateWarnsWhenSourceDoesNotOwn(t *testing.T) {
	mem := stackengine.NewMemory(testBucket)
	mem.Seed("", "x.dat")
	o := newTestOrchestrator(mem)
	out, err := o.Validate(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Validate should not fail on missing ownership: %v", err)
	}
	if len(out.Warnings) == 0 {
		t.Fatal("expected ownership warning")
	}
}

func TestDetachFromSourceReleasesOwnership(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	out, err := o.DetachFromSource(context.Background(), testParams())
	if err != nil {
		t.Fatalf("DetachFromSource: %v", err)
	}
	if !out.Changed {
		t.Fatal("expected Changed=true for a real detach")
	}
	if _, owned := mustOwner(t, mem); owned {
		t.Fatal("resource should have no owner after detach")
	}
	// Retention: contents survive removal from the declaration.
	contents, err := mem.ListContents(context.Background(), testBucket)
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}
	if len(contents) != 5 {
		t.Fatalf("objects=%d want 5 after detach", len(contents))
	}
}

func TestDetachFromSourceIdempotent(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	ctx := context.Background()
	p := testParams()
	if _, err := o.DetachFromSource(ctx, p); err != nil {
		t.Fatalf("first detach: %v", err)
	}
	owner1, owned1 := mustOwner(t, mem)
	out, err := o.DetachFromSource(ctx, p)
	if err != nil {
		t.Fatalf("second detach: %v", err)
	}
	if out.Changed {
		t.Fatal("second detach should be a no-op")
	}
	owner2, owned2 := mustOwner(t, mem)
	if owner1 != owner2 || owned1 != owned2 {
		t.Fatalf("ownership changed across idempotent re-run: (%q,%v) vs (%q,%v)", owner1, owned1, owner2, owned2)
	}
}

func TestDetachFromSourceVerificationFailed(t *testing.T) {
	mem := seededMemory(t)
	mem.StickyOwner = true
	o := newTestOrchestrator(mem)
	_, err := o.DetachFromSource(context.Background(), testParams())
	if got := KindOf(err); got != KindVerification {
		t.Fatalf("kind=%q want %q (err=%v)", got, KindVerification, err)
	}
}

func TestDetachFromSourceReconciliationError(t *testing.T) {
	mem := seededMemory(t)
	mem.ReconcileErr = errors.New("rate exceeded")
	o := newTestOrchestrator(mem)
	_, err := o.DetachFromSource(context.Background(), testParams())
	if got := KindOf(err); got != KindReconciliation {
		t.Fatalf("kind=%q want %q", got, KindReconciliation)
	}
}

func TestPrepareTargetSynthesisError(t *testing.T) {
	mem := seededMemory(t)
	mem.SynthErr = errors.New("template grammar rejected")
	o := newTestOrchestrator(mem)
	_, err := o.PrepareTarget(context.Background(), testParams())
	if got := KindOf(err); got != KindSynthesis {
		t.Fatalf("kind=%q want %q", got, KindSynthesis)
	}
}

func TestPrepareTargetHasNoSideEffects(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	out, err := o.PrepareTarget(context.Background(), testParams())
	if err != nil {
		t.Fatalf("PrepareTarget: %v", err)
	}
	if out.Template == "" {
		t.Fatal("expected a rendered template body")
	}
	if owner, owned := mustOwner(t, mem); !owned || owner != stackA {
		t.Fatalf("ownership changed by a dry run: owner=%q owned=%v", owner, owned)
	}
}

func TestImportRejectedWhileSourceStillOwns(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	_, err := o.ImportResource(context.Background(), testParams())
	if got := KindOf(err); got != KindImport {
		t.Fatalf("kind=%q want %q (must not silently double-own)", got, KindImport)
	}
	// Ownership exclusivity: the failed import left the source as sole owner.
	if owner, owned := mustOwner(t, mem); !owned || owner != stackA {
		t.Fatalf("owner=%q owned=%v, want sole owner %q", owner, owned, stackA)
	}
}

func TestImportResourceAttachesToTarget(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	ctx := context.Background()
	p := testParams()
	if _, err := o.DetachFromSource(ctx, p); err != nil {
		t.Fatalf("detach: %v", err)
	}
	out, err := o.ImportResource(ctx, p)
	if err != nil {
		t.Fatalf("ImportResource: %v", err)
	}
	if !out.Changed || out.Owner != stackB {
		t.Fatalf("changed=%v owner=%q, want true/%q", out.Changed, out.Owner, stackB)
	}
}

func TestImportResourceIdempotentWhenTargetOwns(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	ctx := context.Background()
	p := testParams()
	if _, err := o.DetachFromSource(ctx, p); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if _, err := o.ImportResource(ctx, p); err != nil {
		t.Fatalf("first import: %v", err)
	}
	out, err := o.ImportResource(ctx, p)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if out.Changed {
		t.Fatal("second import should be a no-op")
	}
	if owner, owned := mustOwner(t, mem); !owned || owner != stackB {
		t.Fatalf("owner=%q owned=%v after idempotent import", owner, owned)
	}
}

func TestImportResourceNotFound(t *testing.T) {
	mem := stackengine.NewMemory(testBucket)
	o := newTestOrchestrator(mem)
	_, err := o.ImportResource(context.Background(), testParams())
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("kind=%q want %q", got, KindNotFound)
	}
}

func TestVerifyFailsBeforeImport(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	_, err := o.Verify(context.Background(), testParams())
	if got := KindOf(err); got != KindVerification {
		t.Fatalf("kind=%q want %q", got, KindVerification)
	}
}

func TestSequenceEndToEnd(t *testing.T) {
	mem := seededMemory(t)
	o := newTestOrchestrator(mem)
	ctx := context.Background()
	p := testParams()

	outcomes, err := o.Sequence(ctx, p)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("outcomes=%d want 5", len(outcomes))
	}
	wantSteps := []string{StepValidate, StepDetachSource, StepPrepareTarget, StepImport, StepVerify}
	for i, want := range wantSteps {
		if outcomes[i].Step != want {
			t.Fatalf("step[%d]=%q want %q", i, outcomes[i].Step, want)
		}
	}
	// Retention invariant: item count before step 1 equals item count
	// after step 5.
	if outcomes[0].ObjectCount != 5 || outcomes[4].ObjectCount != 5 {
		t.Fatalf("pre=%d post=%d, want 5/5", outcomes[0].ObjectCount, outcomes[4].ObjectCount)
	}
	if owner, owned := mustOwner(t, mem); !owned || owner != stackB {
		t.Fatalf("final owner=%q owned=%v, want %q", owner, owned, stackB)
	}
	// Re-running the whole sequence is safe: detach and import become
	// no-ops reporting the already-reached state.
	outcomes, err = o.Sequence(ctx, p)
	if err != nil {
		t.Fatalf("second Sequence: %v", err)
	}
	if outcomes[1].Changed || outcomes[3].Changed {
		t.Fatal("detach/import should be no-ops on re-run")
	}
}

func TestSequenceHaltsAtFirstFailure(t *testing.T) {
	mem := stackengine.NewMemory(testBucket)
	o := newTestOrchestrator(mem)
	outcomes, err := o.Sequence(context.Background(), testParams())
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("kind=%q want %q", got, KindNotFound)
	}
	if len(outcomes) != 0 {
		t.Fatalf("no step should complete after a validate failure, got %d", len(outcomes))
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewStepError(StepImport, KindImport, cause)
	if !errors.Is(err, cause) {
		t.Fatal("StepError should unwrap to its cause")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("plain errors carry no kind")
	}
}
