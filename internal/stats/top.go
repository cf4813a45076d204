package stats

import (
	"sort"

	"github.com/verte-zerg/morfo/internal/model"
)

// FeatureCount is the number of entries carrying a feature.
type FeatureCount struct {
	Feature string
	Count   int
}

// TopFeaturesByFrequency returns the top N features by the number of entries
// carrying them. A feature repeated within one entry counts once.
func TopFeaturesByFrequency(d model.Dictionary, n int) []FeatureCount {
	if n <= 0 || len(d) == 0 {
		return nil
	}
	totals := map[string]int{}
	for _, entry := range d {
		seen := map[string]bool{}
		for _, f := range entry.Features {
			if seen[f] {
				continue
			}
			seen[f] = true
			totals[f]++
		}
	}
	items := make([]FeatureCount, 0, len(totals))
	for f, total := range totals {
		items = append(items, FeatureCount{Feature: f, Count: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Feature < items[j].Feature
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
