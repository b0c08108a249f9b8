package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRulesCmd(root *rootOpts) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule set",
		Long: `Prints the pattern tables the scorer uses: the embedded defaults, or the
file named by scoring.rules_file in the config. The YAML output is a valid
starting point for a custom rules file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(root, outputFmt, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFmt, "output", "o", "yaml", "Output format: yaml, json")

	return cmd
}

func runRules(root *rootOpts, outputFmt string, out io.Writer) error {
	cfg, _, err := root.load()
	if err != nil {
		return err
	}
	rs, err := cfg.RuleSet()
	if err != nil {
		return err
	}

	switch outputFmt {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rs); err != nil {
			return fmt.Errorf("encoding rules: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rs)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", outputFmt)
	}
}
