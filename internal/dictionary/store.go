package dictionary

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/morfo/internal/model"
)

// ErrDuplicateLexeme is returned when adding a lexeme that already exists.
var ErrDuplicateLexeme = errors.New("lexeme already exists in dictionary")

// MutationOp identifies a store mutation.
type MutationOp int

const (
	OpInsert MutationOp = iota
	OpRemove
	OpLoad
)

func (op MutationOp) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Mutation describes a change applied to the store.
type Mutation struct {
	Op     MutationOp
	Lexeme string
}

// Pair is a lexeme with its entry.
type Pair struct {
	Lexeme string
	Entry  model.DictionaryEntry
}

// Store is the in-memory dictionary. It is not safe for concurrent use; the
// owner confines it to one goroutine.
type Store struct {
	entries  model.Dictionary
	observer func(Mutation)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: model.Dictionary{}}
}

// Observe registers a function called after every mutation.
func (s *Store) Observe(fn func(Mutation)) {
	s.observer = fn
}

// Load replaces the store contents with a copy of d.
func (s *Store) Load(d model.Dictionary) {
	s.entries = d.Clone()
	s.notify(Mutation{Op: OpLoad})
}

// AddFromTraits derives an entry from a word-info trait list and inserts it.
func (s *Store) AddFromTraits(lexeme string, traits []string) (model.DictionaryEntry, error) {
	if _, ok := s.entries[lexeme]; ok {
		return model.DictionaryEntry{}, fmt.Errorf("%w: %q", ErrDuplicateLexeme, lexeme)
	}
	entry := EntryFromTraits(traits)
	s.Put(lexeme, entry)
	return entry, nil
}

// Put inserts or replaces the entry for lexeme.
func (s *Store) Put(lexeme string, entry model.DictionaryEntry) {
	s.entries[lexeme] = entry.Clone()
	s.notify(Mutation{Op: OpInsert, Lexeme: lexeme})
}

// Remove deletes lexeme. Removing an absent lexeme is a no-op.
func (s *Store) Remove(lexeme string) {
	if _, ok := s.entries[lexeme]; !ok {
		return
	}
	delete(s.entries, lexeme)
	s.notify(Mutation{Op: OpRemove, Lexeme: lexeme})
}

// Has reports whether lexeme is stored.
func (s *Store) Has(lexeme string) bool {
	_, ok := s.entries[lexeme]
	return ok
}

// Get returns a copy of the entry for lexeme.
func (s *Store) Get(lexeme string) (model.DictionaryEntry, bool) {
	entry, ok := s.entries[lexeme]
	if !ok {
		return model.DictionaryEntry{}, false
	}
	return entry.Clone(), true
}

// Len returns the number of stored lexemes.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns the lexemes containing filter in ascending order.
// An empty filter matches every lexeme.
func (s *Store) Entries(filter string) []Pair {
	out := make([]Pair, 0, len(s.entries))
	for lexeme, entry := range s.entries {
		if !strings.Contains(lexeme, filter) {
			continue
		}
		out = append(out, Pair{Lexeme: lexeme, Entry: entry.Clone()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Lexeme < out[j].Lexeme
	})
	return out
}

// Snapshot returns a deep copy of the whole dictionary.
func (s *Store) Snapshot() model.Dictionary {
	return s.entries.Clone()
}

func (s *Store) notify(m Mutation) {
	if s.observer != nil {
		s.observer(m)
	}
}
