package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/surface"
)

type arenaOpts struct {
	root         *rootOpts
	scenarioPath string
	outputFmt    string
	exportPath   string
	evaluatorURL string
	apiKey       string
	evaluatorKey string
}

func newArenaCmd(root *rootOpts) *cobra.Command {
	opts := arenaOpts{root: root}

	cmd := &cobra.Command{
		Use:   "arena",
		Short: "Iteratively generate and refine a narrative until it qualifies",
		Long: `Runs the generator/evaluator loop: a chat model drafts a narrative, the
scorer redlines it, and the critique feeds the next draft until the risk
score reaches the scenario target or the iteration budget runs out.

Requires OPENAI_API_KEY. Set --evaluator-url (or arena.evaluator_url) to
score against a running redlined instead of in process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apiKey = os.Getenv("OPENAI_API_KEY")
			opts.evaluatorKey = os.Getenv("REDLINE_API_KEY")
			return runArena(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.scenarioPath, "scenario", "", "Scenario YAML file (default: built-in medium scenario)")
	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json, markdown")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "Write the full JSON transcript to this file")
	cmd.Flags().StringVar(&opts.evaluatorURL, "evaluator-url", "", "Base URL of a redlined instance to score against")

	return cmd
}

func runArena(ctx context.Context, opts arenaOpts, out io.Writer) error {
	renderer, ok := surface.ForFormat(opts.outputFmt)
	if !ok {
		return fmt.Errorf("unknown output format %q (want text, json or markdown)", opts.outputFmt)
	}

	cfg, logger, err := opts.root.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sc := arena.DefaultScenario()
	if opts.scenarioPath != "" {
		loaded, err := arena.LoadScenario(opts.scenarioPath)
		if err != nil {
			return err
		}
		sc = *loaded
	}

	oc := cfg.OpenAIConfig(opts.apiKey)
	client, err := judge.NewOpenAIClient(oc)
	if errors.Is(err, judge.ErrNoCredential) {
		return fmt.Errorf("arena needs a generator: set OPENAI_API_KEY")
	}
	if err != nil {
		return err
	}
	gen := arena.NewOpenAIGenerator(client, firstNonEmpty(cfg.Arena.Model, oc.Model))

	var eval arena.Evaluator
	if url := firstNonEmpty(opts.evaluatorURL, cfg.Arena.EvaluatorURL); url != "" {
		eval = arena.NewHTTPEvaluator(url, opts.evaluatorKey)
	} else {
		engine, err := cfg.Engine()
		if err != nil {
			return err
		}
		eval = arena.EngineEvaluator{Engine: engine}
	}

	a := arena.New(gen, eval,
		arena.WithRetries(cfg.Arena.Retries),
		arena.WithBackoff(time.Duration(cfg.Arena.Backoff)*time.Millisecond),
		arena.WithLogger(logger),
	)

	fmt.Fprintf(os.Stderr, "Running scenario %q (%s, up to %d rounds, target %d)...\n",
		sc.Name, sc.Difficulty, sc.MaxIterations, sc.TargetRiskScore)
	result := a.Run(ctx, sc)

	if opts.exportPath != "" {
		if err := exportTranscript(opts.exportPath, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Transcript written to %s\n", opts.exportPath)
	}

	if err := renderer.RenderArena(out, result); err != nil {
		return err
	}
	if result.State == arena.StateFailed {
		return fmt.Errorf("arena run failed: %w", result.Err)
	}
	return nil
}

func exportTranscript(path string, result *arena.ArenaResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transcript: %w", err)
	}
	if err := (&surface.JSONRenderer{}).RenderArena(f, result); err != nil {
		f.Close()
		return fmt.Errorf("writing transcript: %w", err)
	}
	return f.Close()
}
