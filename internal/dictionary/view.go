package dictionary

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/morfo/internal/model"
)

// ErrStaleHandle is returned when a handle does not belong to the current view.
var ErrStaleHandle = errors.New("handle does not address the current view")

// Handle addresses one entry within a single view.
type Handle int64

// Item is one addressable row of a view.
type Item struct {
	Handle Handle
	Lexeme string
	Entry  model.DictionaryEntry
}

// View is a sorted, filtered rendering of the store. Handles are only valid
// until the next rebuild.
type View struct {
	Filter string
	items  []Item
	index  map[Handle]int
}

// Items returns the view rows in display order.
func (v *View) Items() []Item {
	if v == nil {
		return nil
	}
	return v.items
}

// Len returns the number of rows.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.items)
}

// At returns the row at position i.
func (v *View) At(i int) (Item, bool) {
	if v == nil || i < 0 || i >= len(v.items) {
		return Item{}, false
	}
	return v.items[i], true
}

// Allocator hands out handles from a counter that never resets.
type Allocator struct {
	next    Handle
	current *View
}

// NewAllocator returns an allocator whose first handle is 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Rebuild produces a fresh view of the store and makes it current.
func (a *Allocator) Rebuild(s *Store, filter string) *View {
	pairs := s.Entries(filter)
	view := &View{
		Filter: filter,
		items:  make([]Item, 0, len(pairs)),
		index:  make(map[Handle]int, len(pairs)),
	}
	for _, p := range pairs {
		h := a.next
		a.next++
		view.index[h] = len(view.items)
		view.items = append(view.items, Item{Handle: h, Lexeme: p.Lexeme, Entry: p.Entry})
	}
	a.current = view
	return view
}

// Current returns the most recent view.
func (a *Allocator) Current() *View {
	return a.current
}

// Resolve maps a handle of the current view to its lexeme.
func (a *Allocator) Resolve(h Handle) (string, error) {
	if a.current == nil {
		return "", fmt.Errorf("%w: %d", ErrStaleHandle, h)
	}
	i, ok := a.current.index[h]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrStaleHandle, h)
	}
	return a.current.items[i].Lexeme, nil
}
