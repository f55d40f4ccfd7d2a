package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/sentiment"
)

type Config struct {
	InPath             string
	OutDir             string
	Timezone           string
	MinResponseSeconds float64
	MaxResponseSeconds float64
	SentimentBackend   string
	SentimentModel     string
	SentimentFallback  string
	APIKey             string
	Pretty             bool
	Overwrite          bool
}

// envDefaults are the DM_WRAPPED_* settings read before flag parsing. Flags
// always win over the environment.
type envDefaults struct {
	Timezone           string  `envconfig:"TIMEZONE"`
	MinResponseSeconds float64 `envconfig:"MIN_RESPONSE_SECONDS"`
	MaxResponseSeconds float64 `envconfig:"MAX_RESPONSE_SECONDS"`
	SentimentBackend   string  `envconfig:"SENTIMENT_BACKEND"`
	SentimentModel     string  `envconfig:"SENTIMENT_MODEL"`
	SentimentFallback  string  `envconfig:"SENTIMENT_FALLBACK"`
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutDir == "" {
		return errors.New("missing -out")
	}
	if c.MinResponseSeconds < 0 {
		return errors.New("min-response-seconds must be >= 0")
	}
	if c.MaxResponseSeconds <= c.MinResponseSeconds {
		return errors.New("max-response-seconds must be > min-response-seconds")
	}
	if err := knownBackend(c.SentimentBackend); err != nil {
		return err
	}
	for _, name := range c.FallbackList() {
		if err := knownBackend(name); err != nil {
			return fmt.Errorf("sentiment-fallback: %w", err)
		}
	}
	if c.SentimentBackend == sentiment.BackendModel && c.SentimentModel == "" {
		return errors.New("missing -sentiment-model (required with -sentiment-backend=model)")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	return nil
}

func knownBackend(name string) error {
	switch name {
	case sentiment.BackendOff, sentiment.BackendHeuristic, sentiment.BackendModel:
		return nil
	default:
		return fmt.Errorf("unknown sentiment backend %q (want %s, %s, or %s)",
			name, sentiment.BackendHeuristic, sentiment.BackendModel, sentiment.BackendOff)
	}
}

// FallbackList splits the comma-separated fallback order, dropping blanks.
func (c Config) FallbackList() []string {
	var names []string
	for _, part := range strings.Split(c.SentimentFallback, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func defaultConfig() (Config, error) {
	_ = godotenv.Load()
	var env envDefaults
	if err := envconfig.Process("dm_wrapped", &env); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	cfg := Config{
		Timezone:           "Europe/Warsaw",
		MinResponseSeconds: 1.0,
		MaxResponseSeconds: 12 * 3600,
		SentimentBackend:   sentiment.BackendHeuristic,
		SentimentModel:     "gpt-5-mini",
		SentimentFallback:  sentiment.BackendHeuristic,
	}
	if env.Timezone != "" {
		cfg.Timezone = env.Timezone
	}
	if env.MinResponseSeconds > 0 {
		cfg.MinResponseSeconds = env.MinResponseSeconds
	}
	if env.MaxResponseSeconds > 0 {
		cfg.MaxResponseSeconds = env.MaxResponseSeconds
	}
	if env.SentimentBackend != "" {
		cfg.SentimentBackend = env.SentimentBackend
	}
	if env.SentimentModel != "" {
		cfg.SentimentModel = env.SentimentModel
	}
	if env.SentimentFallback != "" {
		cfg.SentimentFallback = env.SentimentFallback
	}
	return cfg, nil
}
