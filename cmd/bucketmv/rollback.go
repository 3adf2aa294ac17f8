// File: cmd/bucketmv/rollback.go
// Brief: `bucketmv rollback` — declared, intentionally manual.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
)

func newRollbackCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Emergency manual procedure (not automated)",
		Long: `rollback is reserved but intentionally not automated: recovery uses the
same detach/import primitives in the opposite direction, under human
control. This command prints the procedure and exits non-zero so
pipelines cannot mistake it for an automated compensating transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "rollback is a manual procedure. To re-attach the bucket to the source stack:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  1. bucketmv detach-source --resource %s --source-stack %s   # against the CURRENT owner (the target)\n",
				orPlaceholder(opts.Resource, "<bucket>"), orPlaceholder(opts.TargetStack, "<target-stack>"))
			fmt.Fprintf(out, "  2. bucketmv import --resource %s --target-stack %s --map %s=%s\n",
				orPlaceholder(opts.Resource, "<bucket>"), orPlaceholder(opts.SourceStack, "<source-stack>"),
				"DemoBucket", orPlaceholder(opts.Resource, "<bucket>"))
			fmt.Fprintf(out, "  3. bucketmv verify --resource %s --source-stack %s --target-stack %s\n",
				orPlaceholder(opts.Resource, "<bucket>"), orPlaceholder(opts.TargetStack, "<target-stack>"),
				orPlaceholder(opts.SourceStack, "<source-stack>"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Inspect each step's output before running the next one.")
			return fmt.Errorf("rollback is not automated; follow the printed procedure")
		},
	}
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
