package wrapped

import (
	"math"
	"sort"
)

// ResponseStats summarizes one sender's response-time distribution, in
// minutes. Nil pointers mean the statistic is undefined because no qualifying
// response event survived filtering; that is distinct from a true zero.
type ResponseStats struct {
	Count     int      `json:"count"`
	AvgMin    *float64 `json:"avg_min"`
	MedianMin *float64 `json:"median_min"`
	P90Min    *float64 `json:"p90_min"`
	MinMin    *float64 `json:"min_min"`
	MaxMin    *float64 `json:"max_min"`
}

// ResponseLeader names the sender with the fastest or slowest average reply.
type ResponseLeader struct {
	Sender string  `json:"sender"`
	AvgMin float64 `json:"avg_min"`
}

// ResponseDeltas scans the conversation for responses: a message whose sender
// differs from the previous message's sender. Same-sender runs collapse so the
// newest message in a run is the reference point for the next responder. The
// returned deltas are in seconds, grouped by responder, and already filtered
// to [minSeconds, maxSeconds] to drop same-session rapid fire and multi-day
// gaps. Messages are re-sorted defensively before scanning.
func ResponseDeltas(messages []Message, minSeconds, maxSeconds float64) map[string][]float64 {
	sorted := SortMessages(messages)
	deltas := make(map[string][]float64)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Sender == cur.Sender {
			continue
		}
		deltaSeconds := float64(cur.TimestampMS-prev.TimestampMS) / 1000.0
		if deltaSeconds < minSeconds || deltaSeconds > maxSeconds {
			continue
		}
		deltas[cur.Sender] = append(deltas[cur.Sender], deltaSeconds)
	}
	return deltas
}

// SummarizeDeltas computes count/avg/median/p90/min/max over one group of
// delta seconds, converted to minutes. An empty group yields undefined stats.
func SummarizeDeltas(deltas []float64) ResponseStats {
	if len(deltas) == 0 {
		return ResponseStats{}
	}
	sorted := append([]float64(nil), deltas...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, d := range sorted {
		sum += d
	}
	avg := sum / float64(len(sorted)) / 60.0
	med := median(sorted) / 60.0
	p90 := percentileNearestRank(sorted, 0.90) / 60.0
	minVal := sorted[0] / 60.0
	maxVal := sorted[len(sorted)-1] / 60.0

	return ResponseStats{
		Count:     len(sorted),
		AvgMin:    &avg,
		MedianMin: &med,
		P90Min:    &p90,
		MinMin:    &minVal,
		MaxMin:    &maxVal,
	}
}

// SummarizeResponseTimes summarizes each responder's delta group.
func SummarizeResponseTimes(deltasBySender map[string][]float64) map[string]ResponseStats {
	stats := make(map[string]ResponseStats, len(deltasBySender))
	for sender, deltas := range deltasBySender {
		stats[sender] = SummarizeDeltas(deltas)
	}
	return stats
}

// OverallResponseStats summarizes all qualifying deltas regardless of sender.
func OverallResponseStats(deltasBySender map[string][]float64) ResponseStats {
	var all []float64
	for _, deltas := range deltasBySender {
		all = append(all, deltas...)
	}
	return SummarizeDeltas(all)
}

// ResponseTimeLeaders returns the fastest and slowest average responders, or
// nils when nobody has a defined average. Ties go to the lexicographically
// smaller name so output stays deterministic.
func ResponseTimeLeaders(stats map[string]ResponseStats) (fastest, slowest *ResponseLeader) {
	senders := make([]string, 0, len(stats))
	for sender := range stats {
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	for _, sender := range senders {
		s := stats[sender]
		if s.AvgMin == nil {
			continue
		}
		if fastest == nil || *s.AvgMin < fastest.AvgMin {
			fastest = &ResponseLeader{Sender: sender, AvgMin: *s.AvgMin}
		}
		if slowest == nil || *s.AvgMin > slowest.AvgMin {
			slowest = &ResponseLeader{Sender: sender, AvgMin: *s.AvgMin}
		}
	}
	return fastest, slowest
}

// median over an ascending-sorted, non-empty slice; even sizes average the two
// middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// percentileNearestRank returns the p-th percentile of an ascending-sorted,
// non-empty slice using the nearest-rank method: index ceil(p*n)-1, clamped.
func percentileNearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
