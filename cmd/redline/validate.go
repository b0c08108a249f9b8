package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/validation"
)

// errNondeterministic is returned when an item scores differently on a rerun.
var errNondeterministic = errors.New("scorer is not deterministic")

type validateOpts struct {
	root         *rootOpts
	corpusPath   string
	concurrency  int
	level        float64
	outputFmt    string
	evaluatorURL string
	evaluatorKey string
}

func newValidateCmd(root *rootOpts) *cobra.Command {
	opts := validateOpts{root: root}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Measure scorer agreement against a labelled corpus",
		Long: `Scores every narrative in a labelled corpus twice and reports accuracy,
Cohen's kappa against the expected labels (and between expected and
reviewer labels when present), a confidence interval over risk scores,
and any item that did not score identically both times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.evaluatorKey = os.Getenv("REDLINE_API_KEY")
			return runValidate(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "Labelled corpus YAML file (required)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", validation.DefaultConcurrency, "Items scored in parallel")
	cmd.Flags().Float64Var(&opts.level, "level", 0.95, "Confidence level: 0.95 or 0.99")
	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.evaluatorURL, "evaluator-url", "", "Base URL of a redlined instance to score against")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func runValidate(ctx context.Context, opts validateOpts, out io.Writer) error {
	if opts.outputFmt != "text" && opts.outputFmt != "json" {
		return fmt.Errorf("unknown output format %q (want text or json)", opts.outputFmt)
	}

	cfg, logger, err := opts.root.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	corpus, err := validation.LoadCorpus(opts.corpusPath)
	if err != nil {
		return err
	}

	var eval validation.Evaluator
	if url := firstNonEmpty(opts.evaluatorURL, cfg.Arena.EvaluatorURL); url != "" {
		eval = arena.NewHTTPEvaluator(url, opts.evaluatorKey)
	} else {
		engine, err := cfg.Engine()
		if err != nil {
			return err
		}
		eval = arena.EngineEvaluator{Engine: engine}
	}

	report, err := validation.Run(ctx, eval, corpus, validation.Options{
		Concurrency: opts.concurrency,
		Level:       opts.level,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if opts.outputFmt == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if !report.Deterministic() {
		return fmt.Errorf("%w: %s", errNondeterministic, strings.Join(report.Nondeterministic, ", "))
	}
	return nil
}

func printReport(w io.Writer, r *validation.Report) {
	fmt.Fprintf(w, "Corpus %s: %d items\n", r.Corpus, r.N)
	fmt.Fprintf(w, "  Accuracy:       %.1f%%\n", r.Accuracy*100)
	fmt.Fprintf(w, "  Kappa:          %.3f\n", r.Kappa)
	if r.ReviewerKappa != nil {
		fmt.Fprintf(w, "  Reviewer kappa: %.3f (n=%d)\n", *r.ReviewerKappa, r.ReviewerN)
	}
	if ci := r.RiskInterval; ci != nil {
		fmt.Fprintf(w, "  Risk score:     mean %.1f, %.0f%% CI [%.1f, %.1f]\n", ci.Mean, ci.Level*100, ci.Lower, ci.Upper)
	}

	var misses []validation.ItemResult
	for _, item := range r.Items {
		if !item.Match {
			misses = append(misses, item)
		}
	}
	if len(misses) > 0 {
		fmt.Fprintf(w, "\nMismatches (%d):\n", len(misses))
		for _, item := range misses {
			fmt.Fprintf(w, "  %-20s expected %-15s got %-15s risk %d\n", item.ID, item.Expected, item.Predicted, item.RiskScore)
		}
	}
	if !r.Deterministic() {
		fmt.Fprintf(w, "\nNondeterministic: %s\n", strings.Join(r.Nondeterministic, ", "))
	}
}
