package wrapped

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/sentiment"
)

// PersonStats is the final per-person row of the report. Sentiment is nil when
// scoring was disabled or produced nothing for this person; the person still
// appears in the output with the marker rather than being omitted.
type PersonStats struct {
	Name         string  `json:"person"`
	MessageCount int     `json:"message_count"`
	SharePct     float64 `json:"share_pct"`

	Response  ResponseStats            `json:"response"`
	Sentiment *sentiment.PersonSummary `json:"sentiment"`
}

// Options carries the core configuration consumed by BuildSummary. The
// location is used for display-oriented bucketing only; response-time and
// sentiment arithmetic happen on absolute instants.
type Options struct {
	MinResponseSeconds float64
	MaxResponseSeconds float64
	Location           *time.Location
	TimezoneName       string

	// Scorer produces sentiment scores; Backend is the name the user asked
	// for, which can differ from what the scorer reports after a fallback.
	Scorer  sentiment.Scorer
	Backend string
}

// Summary is the full document handed to the renderer: per-person facts plus
// the distributions the report charts are drawn from. Pure data, no markup.
type Summary struct {
	Participants  []string `json:"participants"`
	TotalMessages int      `json:"total_messages"`
	TextMessages  int      `json:"text_messages"`
	SkippedInput  int      `json:"skipped_input_entries"`

	Timezone           string  `json:"timezone"`
	MinResponseSeconds float64 `json:"min_response_seconds"`
	MaxResponseSeconds float64 `json:"max_response_seconds"`
	PrimaryLanguage    string  `json:"primary_language,omitempty"`

	People          []PersonStats   `json:"people"`
	ResponseOverall ResponseStats   `json:"response_overall"`
	FastestReplier  *ResponseLeader `json:"fastest_replier"`
	SlowestReplier  *ResponseLeader `json:"slowest_replier"`

	Activity     ActivityStats           `json:"activity"`
	Content      ContentStats            `json:"content"`
	MediaLeaders map[string]*SenderCount `json:"media_leaders"`

	SentimentRequested string                 `json:"sentiment_requested"`
	SentimentSource    string                 `json:"sentiment_source"`
	SentimentByMonth   []sentiment.MonthPoint `json:"sentiment_by_month,omitempty"`
}

// BuildSummary runs the analyzer and the scorer as independent passes over the
// loaded sequence and joins their outputs. The input must already have passed
// ValidateConversation.
func BuildSummary(ctx context.Context, messages []Message, skipped int, opts Options) (Summary, error) {
	sorted := SortMessages(messages)
	counts := MessageCounts(sorted)
	total := len(sorted)

	textMessages := 0
	for _, m := range sorted {
		if m.HasText() {
			textMessages++
		}
	}

	deltas := ResponseDeltas(sorted, opts.MinResponseSeconds, opts.MaxResponseSeconds)
	responseStats := SummarizeResponseTimes(deltas)
	fastest, slowest := ResponseTimeLeaders(responseStats)

	items := make([]sentiment.Item, len(sorted))
	for i, m := range sorted {
		items[i] = sentiment.Item{Sender: m.Sender, TimestampMS: m.TimestampMS, Text: m.Text}
	}
	scored, err := sentiment.Summarize(ctx, opts.Scorer, items, opts.Location)
	if err != nil {
		return Summary{}, fmt.Errorf("BuildSummary: %w", err)
	}

	primaryLang := DetectPrimaryLanguage(sorted)
	content := ComputeContent(sorted, stopwordsForLanguage(primaryLang))

	summary := Summary{
		Participants:       Participants(sorted),
		TotalMessages:      total,
		TextMessages:       textMessages,
		SkippedInput:       skipped,
		Timezone:           opts.TimezoneName,
		MinResponseSeconds: opts.MinResponseSeconds,
		MaxResponseSeconds: opts.MaxResponseSeconds,
		PrimaryLanguage:    primaryLang,
		People:             AggregatePersonStats(counts, total, responseStats, scored.BySender),
		ResponseOverall:    OverallResponseStats(deltas),
		FastestReplier:     fastest,
		SlowestReplier:     slowest,
		Activity:           ComputeActivity(sorted, opts.Location),
		Content:            content,
		MediaLeaders:       MediaLeaders(content.Media),
		SentimentRequested: opts.Backend,
		SentimentSource:    scored.Source,
		SentimentByMonth:   scored.ByMonth,
	}
	return summary, nil
}

// AggregatePersonStats joins the analyzer and scorer outputs on the sender
// identifier. The result is ordered by sender name, not insertion or traffic
// order, so repeated runs over the same input produce identical output. A
// person present in one mapping but missing from the other still gets a row:
// undefined response stats stay nil-valued and missing sentiment stays nil.
func AggregatePersonStats(counts map[string]int, total int, response map[string]ResponseStats, scores map[string]sentiment.PersonSummary) []PersonStats {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	people := make([]PersonStats, 0, len(names))
	for _, name := range names {
		stats := PersonStats{
			Name:         name,
			MessageCount: counts[name],
			Response:     response[name],
		}
		if total > 0 {
			stats.SharePct = float64(counts[name]) / float64(total) * 100.0
		}
		if s, ok := scores[name]; ok {
			scoreCopy := s
			stats.Sentiment = &scoreCopy
		}
		people = append(people, stats)
	}
	return people
}
