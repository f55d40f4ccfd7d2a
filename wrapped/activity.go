package wrapped

import (
	"sort"
	"time"
)

// ActivityStats are the time-shaped conversation metrics. Hour, weekday, and
// day bucketing happens in the configured display timezone; everything else is
// pure instant arithmetic.
type ActivityStats struct {
	HourlyCounts  [24]int        `json:"hourly_counts"`
	WeekdayCounts [7]int         `json:"weekday_counts"` // Monday first
	PerMonth      []MonthCount   `json:"messages_per_month"`
	MostActiveDay *DayCount      `json:"most_active_day"`
	LongestGap    *Gap           `json:"longest_gap"`
	LongestStreak Streak         `json:"longest_streak"`
	Starters      map[string]int `json:"conversation_starters"`
	Night         NightStats     `json:"night_stats"`
	LastSeen      LastSeenStats  `json:"last_seen_stats"`
	FastReply     FastReplyStats `json:"fast_reply_stats"`
	FirstMessage  string         `json:"first_message"`
	LastMessage   string         `json:"last_message"`
}

type MonthCount struct {
	Month string `json:"month"` // "2006-01"
	Count int    `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"` // "2006-01-02"
	Count int    `json:"count"`
}

// Gap is the longest silence between two consecutive messages.
type Gap struct {
	Seconds float64 `json:"duration_seconds"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
}

// Streak is the longest run of consecutive messages from one sender.
type Streak struct {
	Sender string `json:"sender"`
	Length int    `json:"length"`
}

// NightStats counts messages sent between StartHour (inclusive) and EndHour
// (exclusive) local time.
type NightStats struct {
	Count     int            `json:"count"`
	Pct       float64        `json:"pct"`
	PerSender map[string]int `json:"per_sender"`
	Winner    *SenderCount   `json:"winner"`
}

// LastSeenStats counts, per sender, the days on which they sent the final
// message of the day at or after the threshold hour.
type LastSeenStats struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
	Winner *SenderCount   `json:"winner"`
}

// FastReplyStats measures how often each sender's messages get answered within
// the fast-reply window.
type FastReplyStats struct {
	Totals     map[string]int     `json:"totals"`
	FastCounts map[string]int     `json:"fast_counts"`
	Ratios     map[string]float64 `json:"ratios"`
	Winner     *SenderPct         `json:"winner"`
}

type SenderCount struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

type SenderPct struct {
	Sender string  `json:"sender"`
	Pct    float64 `json:"pct"`
}

const (
	nightStartHour      = 0
	nightEndHour        = 5
	lastSeenThresholdHr = 23
	fastReplySeconds    = 300.0
	starterGapSeconds   = 6 * 3600.0
	dayLayout           = "2006-01-02"
	monthLayout         = "2006-01"
	timestampLayout     = "2006-01-02 15:04"
)

// ComputeActivity derives all time-shaped metrics in one place so callers only
// walk the messages once per concern.
func ComputeActivity(messages []Message, loc *time.Location) ActivityStats {
	sorted := SortMessages(messages)
	stats := ActivityStats{
		Starters:  conversationStarters(sorted),
		Night:     nightStats(sorted, loc),
		LastSeen:  lastSeenStats(sorted, loc),
		FastReply: fastReplyStats(sorted),
	}

	perDay := make(map[string]int)
	perMonth := make(map[string]int)
	for _, m := range sorted {
		t := localTime(m, loc)
		stats.HourlyCounts[t.Hour()]++
		stats.WeekdayCounts[mondayIndex(t.Weekday())]++
		perDay[t.Format(dayLayout)]++
		perMonth[t.Format(monthLayout)]++
	}

	for _, month := range sortedKeys(perMonth) {
		stats.PerMonth = append(stats.PerMonth, MonthCount{Month: month, Count: perMonth[month]})
	}
	if day, count, ok := maxCount(perDay); ok {
		stats.MostActiveDay = &DayCount{Date: day, Count: count}
	}
	stats.LongestGap = longestGap(sorted, loc)
	stats.LongestStreak = longestStreak(sorted)
	if len(sorted) > 0 {
		stats.FirstMessage = localTime(sorted[0], loc).Format(timestampLayout)
		stats.LastMessage = localTime(sorted[len(sorted)-1], loc).Format(timestampLayout)
	}
	return stats
}

func localTime(m Message, loc *time.Location) time.Time {
	return time.UnixMilli(m.TimestampMS).In(loc)
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func longestGap(sorted []Message, loc *time.Location) *Gap {
	if len(sorted) < 2 {
		return nil
	}
	var gap Gap
	for i := 1; i < len(sorted); i++ {
		deltaSeconds := float64(sorted[i].TimestampMS-sorted[i-1].TimestampMS) / 1000.0
		if deltaSeconds > gap.Seconds {
			gap = Gap{
				Seconds: deltaSeconds,
				Start:   localTime(sorted[i-1], loc).Format(timestampLayout),
				End:     localTime(sorted[i], loc).Format(timestampLayout),
			}
		}
	}
	return &gap
}

func longestStreak(sorted []Message) Streak {
	var best Streak
	currentSender := ""
	currentLen := 0
	for _, m := range sorted {
		if m.Sender == currentSender {
			currentLen++
		} else {
			currentSender = m.Sender
			currentLen = 1
		}
		if currentLen > best.Length {
			best = Streak{Sender: currentSender, Length: currentLen}
		}
	}
	return best
}

// conversationStarters credits the first message overall and any message that
// follows a silence longer than the starter gap.
func conversationStarters(sorted []Message) map[string]int {
	starters := make(map[string]int)
	if len(sorted) == 0 {
		return starters
	}
	starters[sorted[0].Sender]++
	for i := 1; i < len(sorted); i++ {
		deltaSeconds := float64(sorted[i].TimestampMS-sorted[i-1].TimestampMS) / 1000.0
		if deltaSeconds > starterGapSeconds {
			starters[sorted[i].Sender]++
		}
	}
	return starters
}

func nightStats(sorted []Message, loc *time.Location) NightStats {
	stats := NightStats{PerSender: make(map[string]int)}
	for _, m := range sorted {
		hour := localTime(m, loc).Hour()
		if hour >= nightStartHour && hour < nightEndHour {
			stats.Count++
			stats.PerSender[m.Sender]++
		}
	}
	if len(sorted) > 0 {
		stats.Pct = float64(stats.Count) / float64(len(sorted)) * 100.0
	}
	if sender, count, ok := maxCount(stats.PerSender); ok {
		stats.Winner = &SenderCount{Sender: sender, Count: count}
	}
	return stats
}

func lastSeenStats(sorted []Message, loc *time.Location) LastSeenStats {
	lastPerDay := make(map[string]Message)
	for _, m := range sorted {
		lastPerDay[localTime(m, loc).Format(dayLayout)] = m
	}
	stats := LastSeenStats{Counts: make(map[string]int)}
	for _, m := range lastPerDay {
		if localTime(m, loc).Hour() >= lastSeenThresholdHr {
			stats.Counts[m.Sender]++
			stats.Total++
		}
	}
	if sender, count, ok := maxCount(stats.Counts); ok {
		stats.Winner = &SenderCount{Sender: sender, Count: count}
	}
	return stats
}

// fastReplyStats credits the author of the preceding message: their message
// was answered quickly. Totals count every consecutive pair, same-sender runs
// included, so ratios punish senders whose messages tend to hang unanswered.
func fastReplyStats(sorted []Message) FastReplyStats {
	stats := FastReplyStats{
		Totals:     make(map[string]int),
		FastCounts: make(map[string]int),
		Ratios:     make(map[string]float64),
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		stats.Totals[prev.Sender]++
		if prev.Sender == cur.Sender {
			continue
		}
		deltaSeconds := float64(cur.TimestampMS-prev.TimestampMS) / 1000.0
		if deltaSeconds <= fastReplySeconds {
			stats.FastCounts[prev.Sender]++
		}
	}
	for _, sender := range sortedKeys(stats.Totals) {
		total := stats.Totals[sender]
		if total > 0 {
			stats.Ratios[sender] = float64(stats.FastCounts[sender]) / float64(total)
		}
	}
	if sender, ratio, ok := maxRatio(stats.Ratios); ok {
		stats.Winner = &SenderPct{Sender: sender, Pct: ratio * 100.0}
	}
	return stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maxCount returns the key with the highest count, ties broken by key order.
func maxCount(m map[string]int) (string, int, bool) {
	bestKey, bestVal, found := "", 0, false
	for _, k := range sortedKeys(m) {
		if !found || m[k] > bestVal {
			bestKey, bestVal, found = k, m[k], true
		}
	}
	return bestKey, bestVal, found
}

func maxRatio(m map[string]float64) (string, float64, bool) {
	bestKey, bestVal, found := "", 0.0, false
	for _, k := range sortedKeys(m) {
		if !found || m[k] > bestVal {
			bestKey, bestVal, found = k, m[k], true
		}
	}
	return bestKey, bestVal, found
}
