package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/viant/vaultflow"
	"github.com/viant/vaultflow/internal/logging"
	"github.com/viant/vaultflow/tracing"
)

const (
	serviceName = "vaultflow"
	version     = "0.1.0"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	configURL string
	vaultRoot string
	logLevel  string
	out       io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Human in the loop approval queue over a markdown vault",
		Long: `vaultflow watches a vault of markdown records, lists drafts awaiting approval
and delivers approved email and social posts before filing them as done.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&a.configURL, "config", "c", "", "YAML config location (file path or afs URL)")
	cmd.PersistentFlags().StringVar(&a.vaultRoot, "vault", "", "vault root, overrides config")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error, overrides config")

	cmd.AddCommand(
		a.serveCmd(),
		a.listCmd(),
		a.countCmd(),
		a.decideCmd("approve", "Approve a pending item and deliver it"),
		a.decideCmd("reject", "Reject a pending item"),
		a.advanceCmd("promote", "Move a needs action item into the approval queue"),
		a.advanceCmd("complete", "Mark a needs action item done"),
		a.draftCmd(),
		a.historyCmd(),
		a.secretCmd(),
	)
	return cmd
}

// config loads the configuration then applies environment and flag overrides.
func (a *app) config(ctx context.Context) (*vaultflow.Config, error) {
	config := vaultflow.DefaultConfig()
	if a.configURL != "" {
		loaded, err := vaultflow.LoadConfig(ctx, a.configURL)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	config.ApplyEnv(nil)
	if a.vaultRoot != "" {
		config.Vault.RootURL = a.vaultRoot
	}
	if a.logLevel != "" {
		config.Log.Level = a.logLevel
	}
	return config, config.Validate()
}

// service builds the façade; the returned closer releases it and the log file.
func (a *app) service(ctx context.Context) (*vaultflow.Service, zerolog.Logger, func(), error) {
	config, err := a.config(ctx)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger, closeLog, err := logging.New(config.Log.Level, config.Log.File)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger = logger.With().Str("service", serviceName).Logger()
	options := []vaultflow.Option{vaultflow.WithLogger(logger)}
	if config.Tracing.Enabled {
		options = append(options, vaultflow.WithTracing(serviceName, version, config.Tracing.OutputFile))
	}
	srv, err := vaultflow.New(ctx, config, options...)
	if err != nil {
		closeLog()
		return nil, logger, nil, err
	}
	closer := func() {
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("close failed")
		}
		if config.Tracing.Enabled {
			_ = tracing.Shutdown(context.Background())
		}
		closeLog()
	}
	return srv, logger, closer, nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
