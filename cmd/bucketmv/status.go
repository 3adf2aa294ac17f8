// File: cmd/bucketmv/status.go
// Brief: `bucketmv status` — observed protocol state.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
)

func newStatusCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the migration stands, derived from live state",
		Long: `status reconstructs the protocol position from live ownership and
existence queries. Nothing is read from local state: the answer is what
the control plane observes right now. PREPARED_ON_TARGET and VERIFIED
are not independently observable (synthesis has no side effects, and
VERIFIED needs the composite check), so status reports up to
ATTACHED_TO_TARGET; run 'bucketmv verify' to prove the final state.`,
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
			state, err := rt.orch.ObserveState(cmd.Context(), rt.params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "resource: %s\nsource:   %s\ntarget:   %s\nstate:    %s\n",
				opts.Resource, opts.SourceStack, opts.TargetStack, state)
			return nil
		},
	}
}
