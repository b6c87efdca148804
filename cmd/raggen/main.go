// Command raggen generates cited answers for a file of retrieval results by
// prompting a hosted LLM, and writes one answer per input line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"raggen"
	"raggen/cohere"
	"raggen/internal/config"
	"raggen/loader"
	"raggen/preamble"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("raggen: %v", err))
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "YAML run configuration (optional)")
		inputPath   = flag.String("input", "", "retrieval results JSONL (required)")
		outputPath  = flag.String("output", "answers.jsonl", "answers JSONL")
		model       = flag.String("model", "", "model name (overrides config)")
		topK        = flag.Int("topk", 0, "candidates per query (overrides config)")
		concurrency = flag.Int("concurrency", 0, "parallel requests (overrides config)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if *inputPath == "" {
		flag.Usage()
		return errors.New("-input is required")
	}

	// Credentials commonly live in a local .env during development.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *topK > 0 {
		cfg.TopK = *topK
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}

	instructions, err := preamble.NewStore(cfg.Preamble.Dir).Get(cfg.Preamble.Profile)
	if err != nil {
		return err
	}
	gen, err := cohere.New(cfg.Model, cfg.ContextSize,
		cohere.WithAPIKey(os.Getenv("COHERE_API_KEY")),
		cohere.WithPreamble(instructions),
		cohere.WithMaxOutputTokens(cfg.MaxOutputTokens),
		cohere.WithRetryPolicy(cfg.RetryPolicy()),
		cohere.WithTokenCounter(cfg.TokenCounter()),
		cohere.WithLogger(log),
	)
	if err != nil {
		return err
	}

	reqs, err := loader.ReadRequestsFile(*inputPath)
	if err != nil {
		return err
	}
	log.Info("run starting",
		"model", cfg.Model, "requests", len(reqs), "topk", cfg.TopK, "concurrency", cfg.Concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	runner := raggen.Runner{Generator: gen, TopK: cfg.TopK, Concurrency: cfg.Concurrency, Logger: log}
	results, runErr := runner.Run(ctx, reqs)

	if err := loader.WriteResultsFile(*outputPath, completed(results)); err != nil {
		return err
	}
	printSummary(results, time.Since(start))
	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

// completed drops requests an interrupted batch never reached.
func completed(results []raggen.Result) []raggen.Result {
	out := make([]raggen.Result, 0, len(results))
	for _, res := range results {
		if res.Err != "" || res.Exec.ID != "" {
			out = append(out, res)
		}
	}
	return out
}

func printSummary(results []raggen.Result, elapsed time.Duration) {
	answered, blocked, failed := 0, 0, 0
	inTokens, outTokens := 0, 0
	for _, res := range results {
		switch {
		case res.Err != "":
			failed++
		case res.Exec.Response == raggen.BlockedResponse:
			blocked++
		case res.Exec.ID != "":
			answered++
		}
		inTokens += res.Exec.InputTokens
		outTokens += res.Exec.OutputTokens
	}
	fmt.Printf("%s %d answered  %s %d blocked  %s %d failed  in %s\n",
		color.GreenString("✓"), answered,
		color.YellowString("~"), blocked,
		color.RedString("✗"), failed,
		elapsed.Round(time.Second))
	fmt.Printf("tokens: %d in, %d out\n", inTokens, outTokens)
}
