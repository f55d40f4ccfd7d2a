package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/dm-wrapped/wrapped"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/sentiment"
)

func sampleSummary(t *testing.T) wrapped.Summary {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	messages := []wrapped.Message{
		{Sender: "Ola", TimestampMS: base, Text: "hej hej \U0001F602"},
		{Sender: "Ala", TimestampMS: base + 60_000, Text: "czesc, fajny pomysl!"},
		{Sender: "Ola", TimestampMS: base + 180_000, Text: "patrz https://example.com"},
		{Sender: "Ala", TimestampMS: base + 200_000, Photos: 1},
	}
	summary, err := wrapped.BuildSummary(context.Background(), messages, 1, wrapped.Options{
		MinResponseSeconds: 1,
		MaxResponseSeconds: 12 * 3600,
		Location:           time.UTC,
		TimezoneName:       "UTC",
		Scorer:             sentiment.NewHeuristic(),
		Backend:            sentiment.BackendHeuristic,
	})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	return summary
}

func TestRender(t *testing.T) {
	t.Parallel()

	html, err := Render(sampleSummary(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := string(html)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Ala", "Ola",
		"UTC",
		"sentiment: heuristic",
		"Top phrases",
		"Most photos",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
	// Self-contained: no external fetches.
	for _, forbidden := range []string{"<script", "src=\"http", "href=\"http"} {
		if strings.Contains(page, forbidden) {
			t.Fatalf("rendered page contains %q, want fully offline output", forbidden)
		}
	}
}

func TestRender_UndefinedStatsShowNA(t *testing.T) {
	t.Parallel()

	summary := sampleSummary(t)
	// Simulate a run where nothing survived the response filter.
	for i := range summary.People {
		summary.People[i].Response = wrapped.ResponseStats{}
	}
	summary.ResponseOverall = wrapped.ResponseStats{}
	summary.FastestReplier = nil
	summary.SlowestReplier = nil

	html, err := Render(summary)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), "n/a") {
		t.Fatalf("undefined stats should render as n/a")
	}
	if strings.Contains(string(html), "Fastest replier") {
		t.Fatalf("leader card rendered without a leader")
	}
}

func TestRender_DegradedSourceVisible(t *testing.T) {
	t.Parallel()

	summary := sampleSummary(t)
	summary.SentimentRequested = sentiment.BackendModel
	summary.SentimentSource = sentiment.BackendHeuristic

	html, err := Render(summary)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), "requested model") {
		t.Fatalf("degraded run should show the requested backend next to the actual source")
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.html")
	if err := Write(path, sampleSummary(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), "</html>") {
		t.Fatalf("written report looks truncated")
	}
}

func TestHumanDuration(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		90:     "1m",
		3700:   "1h 1m",
		90000:  "1d 1h",
		172800: "2d 0h",
	}
	for in, want := range cases {
		if got := humanDuration(in); got != want {
			t.Fatalf("humanDuration(%v)=%q, want %q", in, got, want)
		}
	}
}
