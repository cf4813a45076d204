// Package stats summarizes the dictionary and the lookup history.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/morfo/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary describes the dictionary contents.
type Summary struct {
	Entries     int
	WithStem    int
	TopFeatures []FeatureCount
}

// Summarize counts entries and the most frequent features.
func Summarize(d model.Dictionary, top int) Summary {
	s := Summary{Entries: len(d), TopFeatures: TopFeaturesByFrequency(d, top)}
	for _, entry := range d {
		if entry.HasStem() {
			s.WithStem++
		}
	}
	return s
}

// DailyCounts buckets lookups into the given number of days ending at now.
// The last value is today.
func DailyCounts(lookups []model.Lookup, days int, now time.Time) []float64 {
	if days <= 0 {
		return nil
	}
	out := make([]float64, days)
	today := startOfDay(now)
	for _, l := range lookups {
		age := int(today.Sub(startOfDay(l.CreatedAt.In(now.Location()))).Hours() / 24)
		if age < 0 || age >= days {
			continue
		}
		out[days-1-age]++
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the dictionary summary.
func RenderSummary(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintln(w, "Dictionary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Entries: %d\n", s.Entries); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "With stem: %d\n", s.WithStem); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderFeatureTable(w, s.TopFeatures)
}

// RenderFeatureTable prints feature frequencies.
func RenderFeatureTable(w io.Writer, counts []FeatureCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No features found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Top Features"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Feature, fmt.Sprintf("%d", c.Count)})
	}
	return writeLines(w, formatTable([]string{"Feature", "Entries"}, rows, map[int]bool{1: true}))
}

// RenderLookupCounts prints history totals per kind.
func RenderLookupCounts(w io.Writer, counts []model.LookupCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No lookups recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Lookups"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.Kind,
			fmt.Sprintf("%d", c.Total),
			fmt.Sprintf("%d", c.Failed),
		})
	}
	return writeLines(w, formatTable([]string{"Kind", "Total", "Failed"}, rows, map[int]bool{1: true, 2: true}))
}

// RenderActivity prints a sparkline of daily lookups.
func RenderActivity(w io.Writer, daily []float64) error {
	if len(daily) == 0 {
		return nil
	}
	var total float64
	for _, v := range daily {
		total += v
	}
	_, err := fmt.Fprintf(w, "Activity (%d days, %.0f lookups): [%s]\n\n", len(daily), total, Sparkline(daily))
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
