// Package sentiment scores message text with one of three interchangeable
// backends: a zero-cost neutral stub, a deterministic local lexicon, or an
// externally supplied classification model. Backends degrade along a
// configured fallback chain instead of failing the run.
package sentiment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Backend names accepted in configuration.
const (
	BackendOff       = "off"
	BackendHeuristic = "heuristic"
	BackendModel     = "model"
)

// BatchSize is how many texts are scored per ScoreBatch call.
const BatchSize = 32

// Label is a categorical sentiment class.
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Score is the sentiment signal for one text. Value is a polarity in [-1, 1];
// Source names the backend that produced it.
type Score struct {
	Value      float64 `json:"value"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Scorer is the capability every backend implements. ScoreBatch must return
// one Score per input text, in order.
type Scorer interface {
	Name() string
	ScoreBatch(ctx context.Context, texts []string) ([]Score, error)
}

// PolarityLabel maps a polarity value onto a categorical label. Values within
// the dead zone around zero count as neutral.
func PolarityLabel(value float64) Label {
	switch {
	case value >= 0.05:
		return LabelPositive
	case value <= -0.05:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Off is the zero-cost backend: every text is neutral.
type Off struct{}

func (Off) Name() string { return BackendOff }

func (Off) ScoreBatch(_ context.Context, texts []string) ([]Score, error) {
	scores := make([]Score, len(texts))
	for i := range scores {
		scores[i] = Score{Label: LabelNeutral, Source: BackendOff}
	}
	return scores, nil
}

// Options configures backend construction.
type Options struct {
	// Model is the classification model identifier (model backend only).
	Model string
	// APIKey authenticates the model backend.
	APIKey string
	// Fallback is the ordered list of backends to degrade to when the
	// requested backend fails mid-run.
	Fallback []string
}

// ForBackend builds the scorer for a configured backend name, wrapping it in
// a fallback chain when one is configured. Unknown names are configuration
// errors.
func ForBackend(backend string, opts Options) (Scorer, error) {
	primary, err := newScorer(backend, opts)
	if err != nil {
		return nil, err
	}
	if len(opts.Fallback) == 0 {
		return primary, nil
	}
	scorers := []Scorer{primary}
	for _, name := range opts.Fallback {
		if name == backend {
			continue
		}
		s, err := newScorer(name, opts)
		if err != nil {
			return nil, err
		}
		scorers = append(scorers, s)
	}
	return NewChain(scorers...), nil
}

func newScorer(backend string, opts Options) (Scorer, error) {
	switch backend {
	case BackendOff:
		return Off{}, nil
	case BackendHeuristic:
		return NewHeuristic(), nil
	case BackendModel:
		return NewClassifier(opts.Model, opts.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q (want %s, %s, or %s)",
			backend, BackendHeuristic, BackendModel, BackendOff)
	}
}

// Item is one scoreable message. The package deliberately does not depend on
// the loader's message type.
type Item struct {
	Sender      string
	TimestampMS int64
	Text        string
}

// PersonSummary aggregates one sender's scores.
type PersonSummary struct {
	Count        int     `json:"count"`
	MeanPolarity float64 `json:"mean_polarity"`
	Positive     int     `json:"positive"`
	Neutral      int     `json:"neutral"`
	Negative     int     `json:"negative"`
	// Source names the backend(s) that actually produced the scores. A run
	// that degraded mid-way reports every contributing backend.
	Source string `json:"source"`
}

// MonthPoint is the mean polarity of all messages in one calendar month.
type MonthPoint struct {
	Month string  `json:"month"`
	Mean  float64 `json:"mean_polarity"`
}

// Result is the aggregated output of a scoring pass.
type Result struct {
	BySender map[string]PersonSummary `json:"by_sender"`
	ByMonth  []MonthPoint             `json:"by_month"`
	// Source is the backend active at the end of the run.
	Source string `json:"source"`
}

// Summarize scores every text-bearing item in batches and aggregates per
// sender and per month. Month bucketing uses the given display location.
func Summarize(ctx context.Context, scorer Scorer, items []Item, loc *time.Location) (Result, error) {
	scoreable := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Text != "" {
			scoreable = append(scoreable, item)
		}
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	labels := make(map[string]map[Label]int)
	sources := make(map[string]map[string]bool)
	byMonth := make(map[string][]float64)

	for start := 0; start < len(scoreable); start += BatchSize {
		end := start + BatchSize
		if end > len(scoreable) {
			end = len(scoreable)
		}
		batch := scoreable[start:end]
		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = item.Text
		}
		scores, err := scorer.ScoreBatch(ctx, texts)
		if err != nil {
			return Result{}, fmt.Errorf("score batch: %w", err)
		}
		if len(scores) != len(batch) {
			return Result{}, fmt.Errorf("score batch: got %d scores for %d texts", len(scores), len(batch))
		}
		for i, score := range scores {
			item := batch[i]
			totals[item.Sender] += score.Value
			counts[item.Sender]++
			if labels[item.Sender] == nil {
				labels[item.Sender] = make(map[Label]int)
			}
			labels[item.Sender][score.Label]++
			if sources[item.Sender] == nil {
				sources[item.Sender] = make(map[string]bool)
			}
			sources[item.Sender][score.Source] = true

			month := time.UnixMilli(item.TimestampMS).In(loc).Format("2006-01")
			byMonth[month] = append(byMonth[month], score.Value)
		}
	}

	result := Result{
		BySender: make(map[string]PersonSummary, len(counts)),
		Source:   scorer.Name(),
	}
	for sender, count := range counts {
		result.BySender[sender] = PersonSummary{
			Count:        count,
			MeanPolarity: totals[sender] / float64(count),
			Positive:     labels[sender][LabelPositive],
			Neutral:      labels[sender][LabelNeutral],
			Negative:     labels[sender][LabelNegative],
			Source:       joinSources(sources[sender]),
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		values := byMonth[month]
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		result.ByMonth = append(result.ByMonth, MonthPoint{Month: month, Mean: sum / float64(len(values))})
	}
	return result, nil
}

func joinSources(set map[string]bool) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}
