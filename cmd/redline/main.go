// Package main provides the redline CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &rootOpts{}
	rootCmd := &cobra.Command{
		Use:   "redline",
		Short: "Audit risk scoring for R&D tax credit narratives",
		Long: `Redline scores R&D project narratives for audit risk, explains the
score line by line, and iteratively refines narratives until they qualify.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&root.configPath, "config", "", "Path to config file (default: nearest .redline/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&root.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newEvaluateCmd(root),
		newHybridCmd(root),
		newArenaCmd(root),
		newValidateCmd(root),
		newRulesCmd(root),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
