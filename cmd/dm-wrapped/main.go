package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/theimaginaryfoundation/dm-wrapped/wrapped"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/fileutils"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/report"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/sentiment"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.SentimentBackend == sentiment.BackendModel && apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("mkdir -out: %w", err).Error())
		os.Exit(2)
	}

	summaryPath := filepath.Join(cfg.OutDir, "summary.json")
	reportPath := filepath.Join(cfg.OutDir, "report.html")
	if !cfg.Overwrite {
		for _, path := range []string{summaryPath, reportPath} {
			if fileutils.FileExists(path) {
				fmt.Fprintf(os.Stderr, "%s already exists (pass -overwrite to replace)\n", path)
				os.Exit(2)
			}
		}
	}

	messages, skipped, err := wrapped.LoadMessages(cfg.InPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := wrapped.ValidateConversation(messages); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "note: skipped %d non-message entries\n", skipped)
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	scorer, err := sentiment.ForBackend(cfg.SentimentBackend, sentiment.Options{
		Model:    cfg.SentimentModel,
		APIKey:   apiKey,
		Fallback: cfg.FallbackList(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	summary, err := wrapped.BuildSummary(ctx, messages, skipped, wrapped.Options{
		MinResponseSeconds: cfg.MinResponseSeconds,
		MaxResponseSeconds: cfg.MaxResponseSeconds,
		Location:           loc,
		TimezoneName:       cfg.Timezone,
		Scorer:             scorer,
		Backend:            cfg.SentimentBackend,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if chain, ok := scorer.(*sentiment.Chain); ok && chain.Degraded() {
		fmt.Fprintf(os.Stderr, "note: sentiment backend %q degraded, scores from %s\n",
			cfg.SentimentBackend, summary.SentimentSource)
	}

	if err := fileutils.WriteJSONFileAtomic(summaryPath, summary, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := report.Write(reportPath, summary); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "messages=%d people=%d skipped=%d sentiment=%s out_dir=%s\n",
		summary.TotalMessages, len(summary.People), skipped, summary.SentimentSource, cfg.OutDir)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return Config{}, err
	}
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to the exported conversation JSON (e.g. message_1.json)")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for report.html and summary.json")
	fs.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA timezone used for display bucketing")
	fs.Float64Var(&cfg.MinResponseSeconds, "min-response-seconds", cfg.MinResponseSeconds, "Discard response deltas below this floor (seconds)")
	fs.Float64Var(&cfg.MaxResponseSeconds, "max-response-seconds", cfg.MaxResponseSeconds, "Discard response deltas above this ceiling (seconds)")
	fs.StringVar(&cfg.SentimentBackend, "sentiment-backend", cfg.SentimentBackend, "Sentiment backend: heuristic, model, or off")
	fs.StringVar(&cfg.SentimentModel, "sentiment-model", cfg.SentimentModel, "OpenAI model for the model backend (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.SentimentFallback, "sentiment-fallback", cfg.SentimentFallback, "Comma-separated backends to degrade to when the primary fails mid-run")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print summary.json")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutDir != "" {
		cfg.OutDir = filepath.Clean(cfg.OutDir)
	}
	return cfg, nil
}
