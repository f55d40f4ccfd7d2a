package wrapped

import (
	"sort"
	"strings"
)

// ContentStats are the text- and media-shaped conversation metrics.
type ContentStats struct {
	TopWords           []ItemCount            `json:"top_words"`
	TopWordsBySender   map[string][]ItemCount `json:"top_words_by_sender"`
	TopPhrases         []ItemCount            `json:"top_phrases"`
	TopPhrasesBySender map[string][]ItemCount `json:"top_phrases_by_sender"`
	TopEmojis          []ItemCount            `json:"top_emojis"`
	TopEmojisBySender  map[string][]ItemCount `json:"top_emojis_by_sender"`
	EmojiTotals        map[string]int         `json:"emoji_totals"`
	EmojiHearts        map[string]int         `json:"emoji_hearts"`
	EmojiLeader        *SenderCount           `json:"emoji_leader"`
	Media              map[string]MediaCounts `json:"media_counts"`
	Links              LinkStats              `json:"link_stats"`
	AvgWordsPerMsg     map[string]float64     `json:"avg_words_per_message"`
}

// ItemCount is one ranked entry of a frequency table.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type MediaCounts struct {
	Photos int `json:"photos"`
	Videos int `json:"videos"`
	Audio  int `json:"audio"`
}

type LinkStats struct {
	Total     int            `json:"total"`
	PerSender map[string]int `json:"per_sender"`
}

var heartEmojis = toSet([]string{
	"❤", "\U0001F90D", "\U0001F9E1", "\U0001F499", "\U0001F49A",
	"\U0001F49B", "\U0001F49C", "\U0001F5A4", "\U0001F90E", "\U0001F498",
	"\U0001F49D", "\U0001F496", "\U0001F497", "\U0001F493", "\U0001F49E",
	"\U0001F49F", "❣",
})

const (
	topGlobalLimit    = 10
	topPerSenderLimit = 5
	phraseMinWords    = 2
	phraseMaxWords    = 5
)

// ComputeContent derives word, emoji, media, and link metrics. The stopword
// set should come from stopwordsForLanguage via the detected primary language.
func ComputeContent(messages []Message, stopwords map[string]bool) ContentStats {
	wordCounts := make(map[string]int)
	wordsBySender := make(map[string]map[string]int)
	emojiCounts := make(map[string]int)
	emojisBySender := make(map[string]map[string]int)
	emojiTotals := make(map[string]int)
	emojiHearts := make(map[string]int)
	phraseCounts := make(map[string]int)
	phrasesBySender := make(map[string]map[string]int)
	media := make(map[string]MediaCounts)
	links := LinkStats{PerSender: make(map[string]int)}
	totalWords := make(map[string]int)
	totalTextMsgs := make(map[string]int)

	for _, m := range messages {
		counts := media[m.Sender]
		counts.Photos += m.Photos
		counts.Videos += m.Videos
		counts.Audio += m.Audio
		media[m.Sender] = counts

		if !m.HasText() {
			continue
		}

		if tokens := Tokenize(m.Text, stopwords); len(tokens) > 0 {
			for _, token := range tokens {
				wordCounts[token]++
				bump(wordsBySender, m.Sender, token)
			}
			totalWords[m.Sender] += len(tokens)
			totalTextMsgs[m.Sender]++
		}

		for _, phrase := range minePhrases(m.Text, stopwords) {
			phraseCounts[phrase]++
			bump(phrasesBySender, m.Sender, phrase)
		}

		if emojis := ExtractEmojis(m.Text); len(emojis) > 0 {
			emojiTotals[m.Sender] += len(emojis)
			for _, emoji := range emojis {
				emojiCounts[emoji]++
				bump(emojisBySender, m.Sender, emoji)
				if heartEmojis[emoji] {
					emojiHearts[m.Sender]++
				}
			}
		}

		if n := len(ExtractLinks(m.Text)); n > 0 {
			links.Total += n
			links.PerSender[m.Sender] += n
		}
	}

	stats := ContentStats{
		TopWords:           topN(wordCounts, topGlobalLimit),
		TopWordsBySender:   topNBySender(wordsBySender, topPerSenderLimit),
		TopPhrases:         topN(phraseCounts, topGlobalLimit),
		TopPhrasesBySender: topNBySender(phrasesBySender, topPerSenderLimit),
		TopEmojis:          topN(emojiCounts, topGlobalLimit),
		TopEmojisBySender:  topNBySender(emojisBySender, topPerSenderLimit),
		EmojiTotals:        emojiTotals,
		EmojiHearts:        emojiHearts,
		Media:              media,
		Links:              links,
		AvgWordsPerMsg:     make(map[string]float64, len(totalTextMsgs)),
	}
	for sender, msgs := range totalTextMsgs {
		stats.AvgWordsPerMsg[sender] = float64(totalWords[sender]) / float64(msgs)
	}
	if sender, count, ok := maxCount(emojiTotals); ok {
		stats.EmojiLeader = &SenderCount{Sender: sender, Count: count}
	}
	return stats
}

// minePhrases yields every meaningful 2- to 5-word window of a message,
// keeping stopwords inside phrases so "w domu" and "co tam" survive intact.
// Messenger system notices ("User unsent a message") are skipped wholesale.
func minePhrases(text string, stopwords map[string]bool) []string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "user") || strings.Contains(lower, "unsent") {
		return nil
	}
	tokens := splitWords(text)
	if len(tokens) < phraseMinWords {
		return nil
	}
	var phrases []string
	for n := phraseMinWords; n <= phraseMaxWords; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			if !meaningfulPhrase(window, stopwords) {
				continue
			}
			phrases = append(phrases, strings.Join(window, " "))
		}
	}
	return phrases
}

// MediaLeaders returns the sender with the most of each media kind, skipping
// kinds nobody used.
func MediaLeaders(media map[string]MediaCounts) map[string]*SenderCount {
	photos := make(map[string]int, len(media))
	videos := make(map[string]int, len(media))
	audio := make(map[string]int, len(media))
	for sender, counts := range media {
		photos[sender] = counts.Photos
		videos[sender] = counts.Videos
		audio[sender] = counts.Audio
	}
	leaders := map[string]*SenderCount{"photos": nil, "videos": nil, "audio": nil}
	for kind, counts := range map[string]map[string]int{"photos": photos, "videos": videos, "audio": audio} {
		if sender, count, ok := maxCount(counts); ok && count > 0 {
			leaders[kind] = &SenderCount{Sender: sender, Count: count}
		}
	}
	return leaders
}

func bump(bySender map[string]map[string]int, sender, key string) {
	counts := bySender[sender]
	if counts == nil {
		counts = make(map[string]int)
		bySender[sender] = counts
	}
	counts[key]++
}

// topN ranks a frequency table by count descending, ties broken by item order,
// so results are byte-identical across runs.
func topN(counts map[string]int, n int) []ItemCount {
	items := make([]ItemCount, 0, len(counts))
	for item, count := range counts {
		items = append(items, ItemCount{Item: item, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Item < items[j].Item
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func topNBySender(bySender map[string]map[string]int, n int) map[string][]ItemCount {
	out := make(map[string][]ItemCount, len(bySender))
	for sender, counts := range bySender {
		out[sender] = topN(counts, n)
	}
	return out
}
