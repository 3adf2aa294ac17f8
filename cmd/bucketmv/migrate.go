// File: cmd/bucketmv/migrate.go
// Brief: `bucketmv migrate` — the sequencing driver.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/migrate"
)

func newMigrateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run the full step sequence: validate through verify",
		Long: `migrate drives the five steps in their required order and halts at the
first failure. The steps themselves do not enforce ordering; this
command is the driver that does. Because every step is idempotent,
re-running migrate after fixing a failure resumes where the protocol
actually stands.`,
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
			sequence := []struct {
				name string
				fn   migrate.StepFunc
			}{
				{migrate.StepValidate, rt.orch.Validate},
				{migrate.StepDetachSource, rt.orch.DetachFromSource},
				{migrate.StepPrepareTarget, rt.orch.PrepareTarget},
				{migrate.StepImport, rt.orch.ImportResource},
				{migrate.StepVerify, rt.orch.Verify},
			}
			for _, step := range sequence {
				if err := rt.runStep(cmd.Context(), step.name, step.fn); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
