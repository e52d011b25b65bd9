package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gehenna/gehenna/internal/config"
	"github.com/gehenna/gehenna/pkg/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "gehenna",
	Short:         "Name registry API and its presentation gateway",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// serviceCommand builds a subcommand that loads config for defaultPort, applies
// the --port override and runs fn until SIGINT/SIGTERM.
func serviceCommand(use, short, defaultPort string, fn func(context.Context, *config.Config) error) *cobra.Command {
	var port string
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(defaultPort)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			logger.Init(cfg.LogLevel)
			logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return fn(ctx, cfg)
		},
	}
	c.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return c
}
