// Package dictionary holds the in-memory lexeme store and its addressable views.
package dictionary

import (
	"strings"

	"github.com/verte-zerg/morfo/internal/model"
)

// EntryFromTraits derives an entry from a word-info trait list.
// Positions 0 and 1 carry "<label>: <stem>" and "<label>: <ending>" markers;
// the rest are features. If either marker does not parse, the entry has no stem
// and no ending.
func EntryFromTraits(traits []string) model.DictionaryEntry {
	entry := model.DictionaryEntry{Features: []string{}}
	if len(traits) > 2 {
		entry.Features = append(entry.Features, traits[2:]...)
	}
	if len(traits) < 2 {
		return entry
	}
	stem, okStem := markerValue(traits[0])
	ending, okEnding := markerValue(traits[1])
	if okStem && okEnding {
		entry.Stem = &stem
		entry.Ending = &ending
	}
	return entry
}

func markerValue(marker string) (string, bool) {
	label, value, ok := strings.Cut(marker, ":")
	if !ok || strings.TrimSpace(label) == "" {
		return "", false
	}
	return strings.TrimPrefix(value, " "), true
}

// Describe renders an entry as "основа: X, окончание: Y, feature, ...".
func Describe(entry model.DictionaryEntry) string {
	parts := make([]string, 0, len(entry.Features)+2)
	if entry.HasStem() {
		parts = append(parts, "основа: "+*entry.Stem, "окончание: "+*entry.Ending)
	}
	parts = append(parts, entry.Features...)
	return strings.Join(parts, ", ")
}
