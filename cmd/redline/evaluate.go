package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
	"github.com/redline-eval/redline/pkg/surface"
)

type evaluateOpts struct {
	root        *rootOpts
	outputFmt   string
	previous    int
	hasPrevious bool
	hybrid      bool
	apiKey      string
}

func newEvaluateCmd(root *rootOpts) *cobra.Command {
	opts := evaluateOpts{root: root}

	cmd := &cobra.Command{
		Use:   "evaluate [file|-]",
		Short: "Score a narrative for audit risk",
		Long: `Scores a narrative read from a file or stdin and prints the risk score,
classification, redline evidence and suggested revisions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasPrevious = cmd.Flags().Changed("previous")
			return runEvaluate(cmd.Context(), opts, inputArg(args), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json, markdown")
	cmd.Flags().IntVar(&opts.previous, "previous", 0, "Previous risk score, to report the change")

	return cmd
}

func newHybridCmd(root *rootOpts) *cobra.Command {
	opts := evaluateOpts{root: root, hybrid: true}

	cmd := &cobra.Command{
		Use:   "hybrid [file|-]",
		Short: "Score a narrative and blend in an LLM judgment",
		Long: `Scores a narrative with the rule engine, then blends the normalized rule
score with a chat model's judgment. Without OPENAI_API_KEY, or when the
model call fails, the rule score is reported alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasPrevious = cmd.Flags().Changed("previous")
			opts.apiKey = os.Getenv("OPENAI_API_KEY")
			return runEvaluate(cmd.Context(), opts, inputArg(args), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json, markdown")
	cmd.Flags().IntVar(&opts.previous, "previous", 0, "Previous risk score, to report the change")

	return cmd
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func runEvaluate(ctx context.Context, opts evaluateOpts, input string, stdin io.Reader, out io.Writer) error {
	renderer, ok := surface.ForFormat(opts.outputFmt)
	if !ok {
		return fmt.Errorf("unknown output format %q (want text, json or markdown)", opts.outputFmt)
	}
	if opts.hasPrevious && (opts.previous < 0 || opts.previous > 100) {
		return fmt.Errorf("--previous must be between 0 and 100, got %d", opts.previous)
	}

	cfg, logger, err := opts.root.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	text, err := readNarrative(input, stdin)
	if err != nil {
		return err
	}

	var result *scoring.EvaluationResult
	if opts.hasPrevious {
		result = engine.EvaluateAgainst(text, opts.previous)
	} else {
		result = engine.Evaluate(text)
	}
	report := surface.NewReport(result)

	if opts.hybrid {
		j, err := cfg.NewJudge(opts.apiKey, logger)
		if err != nil {
			return err
		}
		rule := scoring.Normalize(result, engine.Caps()).OverallScore
		hybrid := judge.Result(j.Score(ctx, text, rule))
		report.Hybrid = &hybrid
	}

	return renderer.Render(out, report)
}
