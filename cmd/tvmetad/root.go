package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tvmeta/internal/config"
	"tvmeta/internal/daemonrun"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		logLevel    string
		development bool
		checkOnly   bool
	)

	cmd := &cobra.Command{
		Use:           "tvmetad",
		Short:         "Background cache maintenance for tvmeta",
		Long:          "tvmetad sweeps expired cache rows on a schedule, pre-resolves the configured warm list, and optionally serves Prometheus metrics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if checkOnly {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config path: %s\n", path)
				if !exists {
					fmt.Fprintln(out, "Config file did not exist; defaults were used")
				}
				fmt.Fprintln(out, "Configuration valid")
				return nil
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&development, "dev", false, "Include caller information in log lines")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Validate configuration and exit")
	return cmd
}
