package sentiment

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"
)

// scriptedScorer returns preset values keyed by text.
type scriptedScorer struct {
	name    string
	values  map[string]float64
	batches int
}

func (s *scriptedScorer) Name() string { return s.name }

func (s *scriptedScorer) ScoreBatch(_ context.Context, texts []string) ([]Score, error) {
	s.batches++
	scores := make([]Score, len(texts))
	for i, text := range texts {
		v := s.values[text]
		scores[i] = Score{Value: v, Label: PolarityLabel(v), Source: s.name}
	}
	return scores, nil
}

func TestPolarityLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value float64
		want  Label
	}{
		{0.5, LabelPositive},
		{0.05, LabelPositive},
		{0.04, LabelNeutral},
		{0, LabelNeutral},
		{-0.04, LabelNeutral},
		{-0.05, LabelNegative},
		{-1, LabelNegative},
	}
	for _, tc := range cases {
		if got := PolarityLabel(tc.value); got != tc.want {
			t.Fatalf("PolarityLabel(%v)=%q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestOffScorer(t *testing.T) {
	t.Parallel()

	scores, err := Off{}.ScoreBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	for i, s := range scores {
		if s.Value != 0 || s.Label != LabelNeutral || s.Source != BackendOff {
			t.Fatalf("scores[%d]=%+v, want neutral off score", i, s)
		}
	}
}

func TestForBackend(t *testing.T) {
	t.Parallel()

	if _, err := ForBackend("nonsense", Options{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	s, err := ForBackend(BackendHeuristic, Options{})
	if err != nil {
		t.Fatalf("ForBackend(heuristic): %v", err)
	}
	if s.Name() != BackendHeuristic {
		t.Fatalf("Name=%q, want heuristic", s.Name())
	}

	chained, err := ForBackend(BackendModel, Options{
		Model:    "gpt-5-mini",
		APIKey:   "k",
		Fallback: []string{BackendModel, BackendHeuristic},
	})
	if err != nil {
		t.Fatalf("ForBackend(model): %v", err)
	}
	chain, ok := chained.(*Chain)
	if !ok {
		t.Fatalf("expected a *Chain, got %T", chained)
	}
	if chain.Name() != BackendModel {
		t.Fatalf("chain starts at %q, want model", chain.Name())
	}
}

func TestSummarize_PerSenderAndMonth(t *testing.T) {
	t.Parallel()

	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	feb := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	items := []Item{
		{Sender: "A", TimestampMS: jan, Text: "good"},
		{Sender: "A", TimestampMS: feb, Text: "bad"},
		{Sender: "B", TimestampMS: feb, Text: "meh"},
		{Sender: "B", TimestampMS: feb}, // no text, never scored
	}
	scorer := &scriptedScorer{name: "fake", values: map[string]float64{
		"good": 0.8, "bad": -0.4, "meh": 0.0,
	}}

	result, err := Summarize(context.Background(), scorer, items, time.UTC)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	a := result.BySender["A"]
	if a.Count != 2 || math.Abs(a.MeanPolarity-0.2) > 1e-9 {
		t.Fatalf("A=%+v, want count 2 mean 0.2", a)
	}
	if a.Positive != 1 || a.Negative != 1 || a.Neutral != 0 {
		t.Fatalf("A labels=%+v", a)
	}
	b := result.BySender["B"]
	if b.Count != 1 || b.Neutral != 1 {
		t.Fatalf("B=%+v, want one neutral score", b)
	}

	if len(result.ByMonth) != 2 {
		t.Fatalf("ByMonth=%v, want two months", result.ByMonth)
	}
	if result.ByMonth[0].Month != "2024-01" || math.Abs(result.ByMonth[0].Mean-0.8) > 1e-9 {
		t.Fatalf("ByMonth[0]=%+v", result.ByMonth[0])
	}
	if result.ByMonth[1].Month != "2024-02" || math.Abs(result.ByMonth[1].Mean-(-0.2)) > 1e-9 {
		t.Fatalf("ByMonth[1]=%+v", result.ByMonth[1])
	}
	if result.Source != "fake" {
		t.Fatalf("Source=%q, want fake", result.Source)
	}
}

func TestSummarize_Batches(t *testing.T) {
	t.Parallel()

	items := make([]Item, BatchSize+5)
	for i := range items {
		items[i] = Item{Sender: "A", TimestampMS: 1, Text: fmt.Sprintf("t%d", i)}
	}
	scorer := &scriptedScorer{name: "fake", values: map[string]float64{}}
	result, err := Summarize(context.Background(), scorer, items, time.UTC)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if scorer.batches != 2 {
		t.Fatalf("batches=%d, want 2", scorer.batches)
	}
	if result.BySender["A"].Count != BatchSize+5 {
		t.Fatalf("Count=%d, want %d", result.BySender["A"].Count, BatchSize+5)
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	t.Parallel()

	result, err := Summarize(context.Background(), Off{}, nil, time.UTC)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(result.BySender) != 0 || len(result.ByMonth) != 0 {
		t.Fatalf("result=%+v, want empty aggregates", result)
	}
	if result.Source != BackendOff {
		t.Fatalf("Source=%q, want off", result.Source)
	}
}

func TestJoinSources(t *testing.T) {
	t.Parallel()

	got := joinSources(map[string]bool{"model": true, "heuristic": true})
	if got != "heuristic+model" {
		t.Fatalf("joinSources=%q, want heuristic+model", got)
	}
}
