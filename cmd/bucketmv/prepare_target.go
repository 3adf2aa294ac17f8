// File: cmd/bucketmv/prepare_target.go
// Brief: `bucketmv prepare-target` command wiring.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newPrepareTargetCommand(opts *config.Options) *cobra.Command {
	var showTemplate bool
	cmd := &cobra.Command{
		Use:   "prepare-target",
		Short: "Synthesize the target declaration without deploying (dry run)",
		Long: `prepare-target renders the target stack's declaration with the import
slot included and validates it, deploying nothing. Configuration errors
surface here, before any mutating step runs.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.RequireStacks(false, true)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			step := func(ctx0 context.Context, p migrate.Params) (*migrate.Outcome, error) {
				out, err := rt.orch.PrepareTarget(ctx0, p)
				if err == nil && showTemplate {
					cmd.Println(out.Template)
				}
				return out, err
			}
			return rt.runStep(cmd.Context(), migrate.StepPrepareTarget, step)
		},
	}
	cmd.Flags().BoolVar(&showTemplate, "show-template", false, "Print the synthesized template body")
	return cmd
}
