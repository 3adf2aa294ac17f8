// File: cmd/bucketmv/detach_source.go
// Brief: `bucketmv detach-source` command wiring.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newDetachSourceCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "detach-source",
		Short: "Remove the bucket from the source stack's declaration",
		Long: `detach-source redeploys the source stack without the bucket. The
bucket's Retain policy keeps the physical bucket and its contents alive.
If the source stack already does not own the bucket, the step succeeds
without doing anything. A reconcile that reports success while the
source is still observed as owner fails with VerificationFailed and is
never retried automatically.`,
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
			return rt.runStep(cmd.Context(), migrate.StepDetachSource, rt.orch.DetachFromSource)
		},
	}
}
