package wrapped

import (
	"fmt"
	"sort"
	"strings"
)

// Message is one entry from a DM export. Immutable after load; every pass over
// the conversation reads the same slice.
type Message struct {
	Sender      string
	TimestampMS int64
	Text        string

	Photos int
	Videos int
	Audio  int
	GIFs   int
	Files  int
}

// HasText reports whether the message carried any textual content.
func (m Message) HasText() bool {
	return m.Text != ""
}

// SortMessages returns a copy of messages sorted by timestamp ascending.
// The sort is stable so same-timestamp messages keep their export order.
// Inputs are usually already chronological, but that is never assumed.
func SortMessages(messages []Message) []Message {
	sorted := append([]Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMS < sorted[j].TimestampMS
	})
	return sorted
}

// Participants returns the distinct senders sorted by message count descending,
// ties broken by name, so the ordering is reproducible for identical inputs.
func Participants(messages []Message) []string {
	counts := MessageCounts(messages)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// MessageCounts returns per-sender message totals.
func MessageCounts(messages []Message) map[string]int {
	counts := make(map[string]int)
	for _, m := range messages {
		counts[m.Sender]++
	}
	return counts
}

// ValidateConversation checks the loaded sequence against the DM contract:
// at least one message and exactly two distinct senders. A third sender means
// the export is not a one-to-one conversation and the run must not proceed.
func ValidateConversation(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("no valid messages found in export")
	}
	counts := MessageCounts(messages)
	if len(counts) == 2 {
		return nil
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(counts) < 2 {
		return fmt.Errorf("expected a two-person conversation, found only %q", names[0])
	}
	return fmt.Errorf("expected a two-person conversation, found %d senders: %s", len(counts), strings.Join(names, ", "))
}
