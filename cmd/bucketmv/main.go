// main.go bootstraps bucketmv: it builds the root Cobra command and
// executes it with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpstpierrehome/musical-buckets/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:   "bucketmv",
		Short: "Move a retained bucket between declarative stacks without touching its data",
		Long: `bucketmv migrates ownership of an S3 bucket from one CloudFormation
stack to another. The bucket and its contents survive the whole handoff:
the source declaration releases the retained bucket, the target
declaration imports it. Every step checks live state first and is safe
to re-run.

Steps must be invoked in order:
  validate -> detach-source -> prepare-target -> import -> verify

or run the whole sequence with 'bucketmv migrate'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Validate()
		},
	}
	opts.AddFlags(cmd)

	cmd.AddCommand(
		newValidateCommand(opts),
		newDetachSourceCommand(opts),
		newPrepareTargetCommand(opts),
		newImportCommand(opts),
		newVerifyCommand(opts),
		newRollbackCommand(opts),
		newMigrateCommand(opts),
		newStatusCommand(opts),
		newRunsCommand(opts),
		newVersionCommand(),
	)
	bindViper(cmd)
	return cmd
}

// bindViper overlays BUCKETMV_* environment variables (and an optional
// config file named by BUCKETMV_CONFIG) onto any flag the user did not
// set explicitly.
func bindViper(root *cobra.Command) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("BUCKETMV")
	v.AutomaticEnv()
	configFile := os.Getenv("BUCKETMV_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	cobra.OnInitialize(func() {
		if err := v.BindPFlags(root.PersistentFlags()); err != nil {
			cobra.CheckErr(err)
		}
		if configFile != "" {
			if err := v.ReadInConfig(); err != nil {
				cobra.CheckErr(err)
			}
		}
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if val := fmt.Sprintf("%v", v.Get(f.Name)); val != "" {
				_ = f.Value.Set(val)
			}
		})
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		message = fmt.Sprintf("%s\nHint: the step was interrupted; re-running the same step is safe.", err)
	case strings.Contains(message, "ExpiredToken") || strings.Contains(message, "credentials"):
		message = fmt.Sprintf("%s\nHint: refresh your AWS credentials, then re-run the same step.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
