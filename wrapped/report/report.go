// Package report renders a wrapped.Summary into a single self-contained HTML
// page. No scripts, no external assets; charts are plain divs sized inline so
// the file opens the same from disk, a mail attachment, or an air-gapped box.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"

	"github.com/theimaginaryfoundation/dm-wrapped/wrapped"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/fileutils"
	"github.com/theimaginaryfoundation/dm-wrapped/wrapped/sentiment"
)

//go:embed report.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.tmpl").Funcs(template.FuncMap{
		"f1":     formatFloat1,
		"f2":     formatFloat2,
		"optmin": formatOptMinutes,
	}).ParseFS(templateFS, "report.tmpl"),
)

// bar is one row of a horizontal bar chart. Pct is the width of the filled
// portion relative to the busiest bucket of the same chart.
type bar struct {
	Label string
	Count int
	Pct   float64
}

// polarityBar places a mean polarity in [-1, 1] on a centered scale: Pct is
// the magnitude as a half-width percentage, Negative picks the side.
type polarityBar struct {
	Label    string
	Mean     float64
	Pct      float64
	Negative bool
}

type page struct {
	wrapped.Summary

	HourBars      []bar
	WeekdayBars   []bar
	MonthBars     []bar
	SentimentBars []polarityBar
	LongestGap    string
}

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Render produces the complete HTML document for a summary.
func Render(summary wrapped.Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, buildPage(summary)); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the summary and writes it atomically so an interrupted run
// never leaves a truncated report behind.
func Write(path string, summary wrapped.Summary) error {
	html, err := Render(summary)
	if err != nil {
		return err
	}
	return fileutils.WriteFileAtomicSameDir(path, html, 0o644)
}

func buildPage(summary wrapped.Summary) page {
	p := page{
		Summary:       summary,
		WeekdayBars:   make([]bar, 0, 7),
		HourBars:      make([]bar, 0, 24),
		SentimentBars: polarityBars(summary.SentimentByMonth),
	}

	hourMax := 0
	for _, c := range summary.Activity.HourlyCounts {
		hourMax = maxInt(hourMax, c)
	}
	for hour, c := range summary.Activity.HourlyCounts {
		p.HourBars = append(p.HourBars, bar{
			Label: fmt.Sprintf("%02d", hour),
			Count: c,
			Pct:   ratioPct(c, hourMax),
		})
	}

	weekdayMax := 0
	for _, c := range summary.Activity.WeekdayCounts {
		weekdayMax = maxInt(weekdayMax, c)
	}
	for i, c := range summary.Activity.WeekdayCounts {
		p.WeekdayBars = append(p.WeekdayBars, bar{
			Label: weekdayNames[i],
			Count: c,
			Pct:   ratioPct(c, weekdayMax),
		})
	}

	monthMax := 0
	for _, m := range summary.Activity.PerMonth {
		monthMax = maxInt(monthMax, m.Count)
	}
	for _, m := range summary.Activity.PerMonth {
		p.MonthBars = append(p.MonthBars, bar{
			Label: m.Month,
			Count: m.Count,
			Pct:   ratioPct(m.Count, monthMax),
		})
	}

	if g := summary.Activity.LongestGap; g != nil {
		p.LongestGap = fmt.Sprintf("%s (%s to %s)", humanDuration(g.Seconds), g.Start, g.End)
	}
	return p
}

func polarityBars(points []sentiment.MonthPoint) []polarityBar {
	bars := make([]polarityBar, 0, len(points))
	for _, pt := range points {
		magnitude := math.Min(math.Abs(pt.Mean), 1.0)
		bars = append(bars, polarityBar{
			Label:    pt.Month,
			Mean:     pt.Mean,
			Pct:      magnitude * 50.0,
			Negative: pt.Mean < 0,
		})
	}
	return bars
}

// humanDuration renders a second count as the largest two applicable units,
// e.g. "3d 7h" or "45m".
func humanDuration(seconds float64) string {
	total := int64(seconds)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func ratioPct(count, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(count) / float64(max) * 100.0
}

func maxInt(a, b int) int {
	if b > a {
		return b
	}
	return a
}

func formatFloat1(v float64) string { return fmt.Sprintf("%.1f", v) }

func formatFloat2(v float64) string { return fmt.Sprintf("%.2f", v) }

// formatOptMinutes renders an optional minute value; undefined stays visibly
// undefined instead of collapsing to zero.
func formatOptMinutes(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f min", *v)
}
