// File: cmd/bucketmv/validate.go
// Brief: `bucketmv validate` command wiring.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newValidateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the bucket exists and report who owns it (read-only)",
		Long: `validate confirms the physical bucket exists and is reachable, reports
which stack currently declares it, and captures the pre-migration object
inventory. A source stack that does not own the bucket is a warning, not
a failure.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.RequireStacks(true, false)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.runStep(cmd.Context(), migrate.StepValidate, rt.orch.Validate)
		},
	}
}
