// File: cmd/bucketmv/version.go
// Brief: `bucketmv version` command wiring.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpstpierrehome/musical-buckets/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
