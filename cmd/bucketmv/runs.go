// File: cmd/bucketmv/runs.go
// Brief: `bucketmv runs` — step journal listing.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
	"github.com/mpstpierrehome/musical-buckets/internal/journal"
)

func newRunsCommand(opts *config.Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded step invocations from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jrnl, err := journal.Open(opts.JournalPath)
			if err != nil {
				return err
			}
			defer jrnl.Close()
			entries, err := jrnl.ListSteps(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "journal is empty")
				return nil
			}
			fmt.Fprintf(out, "%-20s %-15s %-20s %-18s %-8s %s\n", "When", "Step", "Resource", "Outcome", "Objects", "Owner")
			for _, e := range entries {
				objects := "-"
				if e.ObjectCount >= 0 {
					objects = fmt.Sprintf("%d", e.ObjectCount)
				}
				owner := e.Owner
				if owner == "" {
					owner = "-"
				}
				fmt.Fprintf(out, "%-20s %-15s %-20s %-18s %-8s %s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					e.Step, e.Resource, e.Outcome, objects, owner)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "How many recent entries to show")
	return cmd
}
