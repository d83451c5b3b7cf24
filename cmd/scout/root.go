package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scout",
		Short: "Arbitrage Scout - watch two markets for cross-market spreads",
		Long: `Arbitrage Scout lists the pairs two markets have in common and, once per
tick, reports every pair where buying on one market and selling on the other
clears the configured profitability threshold.

Examples:
  scout run
  scout run --cli --config scout.yaml
  scout pairs
  scout history --limit 50`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to configuration file")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newPairsCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scout %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}
