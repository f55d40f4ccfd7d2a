package wrapped

import (
	"testing"
)

func textMsg(sender, text string) Message {
	return Message{Sender: sender, TimestampMS: 1, Text: text}
}

func TestComputeContent_TopWords(t *testing.T) {
	t.Parallel()

	messages := []Message{
		textMsg("A", "pizza pizza pizza"),
		textMsg("B", "pizza burger"),
		textMsg("B", "burger"),
	}
	stats := ComputeContent(messages, englishStopwords)

	if len(stats.TopWords) < 2 || stats.TopWords[0].Item != "pizza" || stats.TopWords[0].Count != 4 {
		t.Fatalf("TopWords=%v, want pizza x4 first", stats.TopWords)
	}
	if stats.TopWords[1].Item != "burger" || stats.TopWords[1].Count != 2 {
		t.Fatalf("TopWords=%v, want burger x2 second", stats.TopWords)
	}
	if got := stats.TopWordsBySender["B"]; len(got) == 0 || got[0].Item != "burger" {
		t.Fatalf("TopWordsBySender[B]=%v, want burger first", got)
	}
}

func TestComputeContent_TopPhrases(t *testing.T) {
	t.Parallel()

	messages := []Message{
		textMsg("A", "pizza night tonight"),
		textMsg("A", "pizza night tonight"),
		textMsg("B", "pizza night"),
	}
	stats := ComputeContent(messages, englishStopwords)

	if len(stats.TopPhrases) == 0 || stats.TopPhrases[0].Item != "pizza night" || stats.TopPhrases[0].Count != 3 {
		t.Fatalf("TopPhrases=%v, want 'pizza night' x3 first", stats.TopPhrases)
	}
	if got := stats.TopPhrasesBySender["B"]; len(got) != 1 || got[0].Item != "pizza night" {
		t.Fatalf("TopPhrasesBySender[B]=%v, want only 'pizza night'", got)
	}
	if got := stats.TopPhrasesBySender["A"]; len(got) != 3 {
		t.Fatalf("TopPhrasesBySender[A]=%v, want all three windows", got)
	}
}

func TestMinePhrases(t *testing.T) {
	t.Parallel()

	phrases := minePhrases("bylem w domu", stopwordsForLanguage("pl"))
	if len(phrases) != 2 || phrases[0] != "w domu" || phrases[1] != "bylem w domu" {
		t.Fatalf("phrases=%v, want stopwords kept inside phrases", phrases)
	}

	// Two-word windows ending on a stopword are cut mid-sentence.
	if got := minePhrases("pizza to", englishStopwords); len(got) != 0 {
		t.Fatalf("phrases=%v, want trailing-stopword pair rejected", got)
	}
	// All-stopword windows carry no content.
	if got := minePhrases("to the to the", englishStopwords); len(got) != 0 {
		t.Fatalf("phrases=%v, want stopword-only windows rejected", got)
	}
	// Unsend notices are not conversation text.
	if got := minePhrases("User unsent a message", englishStopwords); got != nil {
		t.Fatalf("phrases=%v, want unsend notice skipped", got)
	}
	if got := minePhrases("xd xd xd", englishStopwords); len(got) != 0 {
		t.Fatalf("phrases=%v, want keysmash windows rejected", got)
	}
}

func TestComputeContent_TieBreaksAreDeterministic(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"zeta": 3, "alfa": 3, "mid": 3}
	got := topN(counts, 3)
	if got[0].Item != "alfa" || got[1].Item != "mid" || got[2].Item != "zeta" {
		t.Fatalf("topN=%v, want ties in item order", got)
	}
}

func TestComputeContent_EmojisAndHearts(t *testing.T) {
	t.Parallel()

	messages := []Message{
		textMsg("A", "hej \U0001F602\U0001F602❤"),
		textMsg("B", "\U0001F602"),
	}
	stats := ComputeContent(messages, englishStopwords)

	if stats.EmojiTotals["A"] != 3 || stats.EmojiTotals["B"] != 1 {
		t.Fatalf("EmojiTotals=%v", stats.EmojiTotals)
	}
	if stats.EmojiHearts["A"] != 1 || stats.EmojiHearts["B"] != 0 {
		t.Fatalf("EmojiHearts=%v, want one heart for A", stats.EmojiHearts)
	}
	if stats.EmojiLeader == nil || stats.EmojiLeader.Sender != "A" {
		t.Fatalf("EmojiLeader=%+v, want A", stats.EmojiLeader)
	}
	if len(stats.TopEmojis) == 0 || stats.TopEmojis[0].Item != "\U0001F602" || stats.TopEmojis[0].Count != 3 {
		t.Fatalf("TopEmojis=%v", stats.TopEmojis)
	}
}

func TestComputeContent_MediaAndLinks(t *testing.T) {
	t.Parallel()

	messages := []Message{
		{Sender: "A", TimestampMS: 1, Photos: 2, Videos: 1},
		{Sender: "B", TimestampMS: 2, Audio: 3},
		textMsg("A", "see https://example.com and www.example.pl"),
	}
	stats := ComputeContent(messages, englishStopwords)

	if stats.Media["A"].Photos != 2 || stats.Media["A"].Videos != 1 || stats.Media["B"].Audio != 3 {
		t.Fatalf("Media=%v", stats.Media)
	}
	if stats.Links.Total != 2 || stats.Links.PerSender["A"] != 2 {
		t.Fatalf("Links=%+v", stats.Links)
	}

	leaders := MediaLeaders(stats.Media)
	if leaders["photos"] == nil || leaders["photos"].Sender != "A" {
		t.Fatalf("photos leader=%+v, want A", leaders["photos"])
	}
	if leaders["audio"] == nil || leaders["audio"].Sender != "B" {
		t.Fatalf("audio leader=%+v, want B", leaders["audio"])
	}
}

func TestComputeContent_AvgWordsPerMessage(t *testing.T) {
	t.Parallel()

	messages := []Message{
		textMsg("A", "jeden dwa trzy"),
		textMsg("A", "jeden"),
	}
	stats := ComputeContent(messages, map[string]bool{})
	if got := stats.AvgWordsPerMsg["A"]; got != 2.0 {
		t.Fatalf("AvgWordsPerMsg[A]=%v, want 2.0", got)
	}
}

func TestMediaLeaders_SkipsUnusedKinds(t *testing.T) {
	t.Parallel()

	leaders := MediaLeaders(map[string]MediaCounts{
		"A": {Photos: 1},
		"B": {},
	})
	if leaders["photos"] == nil {
		t.Fatalf("want a photos leader")
	}
	if leaders["videos"] != nil || leaders["audio"] != nil {
		t.Fatalf("videos/audio leaders=%+v/%+v, want nil for unused kinds", leaders["videos"], leaders["audio"])
	}
}
