// File: cmd/bucketmv/runtime.go
// Brief: Shared wiring: collaborators, journal, console, step execution.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mpstpierrehome/musical-buckets/internal/cfn"
	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/declare"
	"github.com/mpstpierrehome/musical-buckets/internal/journal"
	"github.com/mpstpierrehome/musical-buckets/internal/logging"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
	"github.com/mpstpierrehome/musical-buckets/internal/preflight"
	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
	"github.com/mpstpierrehome/musical-buckets/internal/ui"
)

type runtime struct {
	opts   *config.Options
	log    *zap.Logger
	orch   *migrate.Orchestrator
	jrnl   *journal.Journal
	con    *ui.StepConsole
	params migrate.Params
}

// newRuntime builds everything a step command needs. The caller owns
// Close.
func newRuntime(ctx context.Context, cmd *cobra.Command, opts *config.Options) (*runtime, error) {
	if err := opts.RequireResource(); err != nil {
		return nil, err
	}
	ui.Configure(opts.ColorMode, cmd.OutOrStdout())
	log, err := logging.New(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	var engine stackengine.Engine
	var inspector stackengine.Inspector
	switch opts.Engine {
	case config.EngineMemory:
		mem := stackengine.NewMemory(opts.Resource)
		if opts.SourceStack != "" {
			var objects []string
			for i := 0; i < opts.SeedObjects; i++ {
				objects = append(objects, fmt.Sprintf("demo/object-%04d.dat", i+1))
			}
			mem.Seed(opts.SourceStack, objects...)
		}
		engine, inspector = mem, mem
	default:
		cfg, err := preflight.LoadConfig(ctx, opts.Region, opts.Profile)
		if err != nil {
			return nil, migrate.NewStepError("preflight", migrate.KindPrereqMissing, err)
		}
		if err := preflight.Check(ctx, cfg, log); err != nil {
			return nil, migrate.NewStepError("preflight", migrate.KindPrereqMissing, err)
		}
		declarations := map[string]declare.TemplateFunc{}
		var candidates []string
		if opts.SourceStack != "" {
			declarations[opts.SourceStack] = declare.SourceStack(opts.Resource)
			candidates = append(candidates, opts.SourceStack)
		}
		if opts.TargetStack != "" {
			declarations[opts.TargetStack] = declare.TargetStack(opts.Resource)
			candidates = append(candidates, opts.TargetStack)
		}
		engine = cfn.NewEngine(cfg, declarations, log)
		inspector = cfn.NewInspector(cfg, candidates)
	}

	jrnl, err := journal.Open(opts.JournalPath)
	if err != nil {
		return nil, err
	}

	return &runtime{
		opts: opts,
		log:  log,
		orch: migrate.New(engine, inspector, log),
		jrnl: jrnl,
		con:  ui.NewStepConsole(cmd.OutOrStdout()),
		params: migrate.Params{
			Resource:    opts.Resource,
			SourceStack: opts.SourceStack,
			TargetStack: opts.TargetStack,
			Mapping:     opts.Mapping,
		},
	}, nil
}

func (rt *runtime) Close() {
	if rt == nil {
		return
	}
	if rt.jrnl != nil {
		_ = rt.jrnl.Close()
	}
	_ = rt.log.Sync()
}

// runStep executes one step, prints its outcome, and journals it. The
// returned error is the step's own, untouched, so exit codes and error
// kinds propagate.
func (rt *runtime) runStep(ctx context.Context, step string, fn migrate.StepFunc) error {
	rt.con.Begin(step, rt.params.Resource)
	out, err := fn(ctx, rt.params)
	if err != nil {
		kind := string(migrate.KindOf(err))
		rt.con.Fail(step, kind, err.Error())
		rt.journalStep(ctx, step, kind, nil)
		return err
	}
	for _, note := range out.Notes {
		rt.con.Note(note)
	}
	for _, warning := range out.Warnings {
		rt.con.Warn(warning)
	}
	switch step {
	case migrate.StepValidate:
		if err := rt.jrnl.SaveInventory(ctx, rt.params.Resource, out.Items); err != nil {
			rt.con.Warn(fmt.Sprintf("could not capture inventory: %v", err))
		}
	case migrate.StepVerify:
		rt.reportInventoryDrift(ctx, out.Items)
	}
	label := "ok"
	if !out.Changed && (step == migrate.StepDetachSource || step == migrate.StepImport) {
		label = "noop"
	}
	rt.con.OK(step, label == "noop")
	rt.journalStep(ctx, step, label, out)
	return nil
}

func (rt *runtime) journalStep(ctx context.Context, step, outcome string, out *migrate.Outcome) {
	entry := journal.Entry{
		Step:        step,
		Resource:    rt.params.Resource,
		SourceStack: rt.params.SourceStack,
		TargetStack: rt.params.TargetStack,
		Outcome:     outcome,
		ObjectCount: -1,
	}
	if out != nil {
		entry.Owner = out.Owner
		entry.ObjectCount = out.ObjectCount
		entry.Note = strings.Join(out.Notes, "; ")
	}
	if err := rt.jrnl.RecordStep(ctx, entry); err != nil {
		rt.log.Warn("journal write failed", zap.Error(err))
	}
}

// reportInventoryDrift diffs the current inventory against the one
// captured at validate time. Informational only: verify's pass/fail
// already happened, and the protocol promises presence and count, not
// byte-level fidelity.
func (rt *runtime) reportInventoryDrift(ctx context.Context, current []string) {
	before, capturedAt, ok, err := rt.jrnl.LatestInventory(ctx, rt.params.Resource)
	if err != nil {
		rt.con.Warn(fmt.Sprintf("could not load validate-time inventory: %v", err))
		return
	}
	if !ok {
		rt.con.Note("no validate-time inventory on record; skipping drift report")
		return
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(before, "\n")),
		B:        difflib.SplitLines(strings.Join(current, "\n")),
		FromFile: fmt.Sprintf("inventory@validate (%s)", capturedAt.Format("2006-01-02 15:04:05")),
		ToFile:   "inventory@verify",
		Context:  2,
	})
	if err != nil {
		rt.con.Warn(fmt.Sprintf("could not diff inventories: %v", err))
		return
	}
	if strings.TrimSpace(text) == "" {
		rt.con.Note(fmt.Sprintf("inventory unchanged since validate (%d items)", len(before)))
		return
	}
	rt.con.Warn("inventory changed since validate:")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		rt.con.Note("  " + line)
	}
}
