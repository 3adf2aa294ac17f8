// File: cmd/bucketmv/import.go
// Brief: `bucketmv import` command wiring.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newImportCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Attach the bucket to the target stack's declaration",
		Long: `import binds the existing physical bucket into the target stack's
declaration using the explicit --map logical=physical mapping, so the
operation never prompts. The bucket must be owned by no stack: run
detach-source first. If the target already owns the bucket the step is
a no-op success. Ownership is re-verified after the import; a mismatch
fails with VerificationFailed.`,
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
			return rt.runStep(cmd.Context(), migrate.StepImport, rt.orch.ImportResource)
		},
	}
}
