// Package model defines shared data structures.
package model

import "time"

// Config defines client settings after config file and flags are merged.
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Autoload  bool
	Mirror    bool
	LogFile   string
}

// HistoryConfig defines filters for lookup history output.
type HistoryConfig struct {
	Kind  string
	Since *time.Time
	Last  int
}

// DictionaryEntry is the stem/ending/feature data stored for one lexeme.
// Ending is set iff Stem is set.
type DictionaryEntry struct {
	Stem     *string  `json:"основа,omitempty"`
	Ending   *string  `json:"окончание,omitempty"`
	Features []string `json:"Признаки"`
}

// NewEntry builds an entry with a stem/ending pair.
func NewEntry(stem, ending string, features []string) DictionaryEntry {
	return DictionaryEntry{
		Stem:     &stem,
		Ending:   &ending,
		Features: append([]string{}, features...),
	}
}

// HasStem reports whether the stem/ending pair is present.
func (e DictionaryEntry) HasStem() bool {
	return e.Stem != nil && e.Ending != nil
}

// Clone returns a deep copy of the entry.
func (e DictionaryEntry) Clone() DictionaryEntry {
	out := DictionaryEntry{Features: append([]string{}, e.Features...)}
	if e.HasStem() {
		stem, ending := *e.Stem, *e.Ending
		out.Stem = &stem
		out.Ending = &ending
	}
	return out
}

// Dictionary maps lexeme text to its entry.
type Dictionary map[string]DictionaryEntry

// Clone returns a deep copy of the dictionary.
func (d Dictionary) Clone() Dictionary {
	out := make(Dictionary, len(d))
	for lexeme, entry := range d {
		out[lexeme] = entry.Clone()
	}
	return out
}

// Analysis is one lexeme of a decomposed sentence.
type Analysis struct {
	Lexeme      string
	Description string
}

// Decomposition is a sentence with its analyses in service order.
type Decomposition struct {
	Sentence string
	Analyses []Analysis
}

// MorphResult is a word inflected by a set of trait codes.
type MorphResult struct {
	Word    string
	Traits  []string
	Morphed string
}

// TraitSelection holds the optional gender, number and case choices.
// Values may be display labels or service codes; blank means unselected.
type TraitSelection struct {
	Gender string
	Number string
	Case   string
}

// Lookup kinds recorded in history.
const (
	LookupDecompose = "decompose"
	LookupMorph     = "morph"
)

// Lookup is a recorded remote request.
type Lookup struct {
	ID        int64
	Kind      string
	Input     string
	Traits    []string
	Result    string
	OK        bool
	CreatedAt time.Time
}

// LookupCount aggregates history rows per kind.
type LookupCount struct {
	Kind   string
	Total  int
	Failed int
}
