// File: cmd/bucketmv/verify.go
// Brief: `bucketmv verify` command wiring.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newVerifyCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Prove the handoff: target owns, source does not, data intact",
		Long: `verify checks that the target stack owns the bucket, the source stack
does not, the bucket is reachable, and reports the object count for
manual comparison against the validate-time inventory. When a
validate-time inventory is on record, a unified diff of the object keys
is printed informationally. No byte-level content proof is attempted.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.RequireStacks(true, true)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.runStep(cmd.Context(), migrate.StepVerify, rt.orch.Verify)
		},
	}
}
