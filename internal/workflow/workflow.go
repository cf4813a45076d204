// Package workflow coordinates the decompose, morph and dictionary workflows.
//
// Each workflow is split into Begin (validate, capture state), Fetch (remote
// calls only, safe to run on another goroutine) and Finish (mutate, rebuild,
// push). Shared state is only touched by Begin and Finish, which must run on
// the owner's goroutine. The composite methods run all three in sequence.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/verte-zerg/morfo/internal/dictionary"
	"github.com/verte-zerg/morfo/internal/grammeme"
	"github.com/verte-zerg/morfo/internal/model"
)

var (
	// ErrPreconditionNotMet is returned when a workflow lacks its input or selection.
	ErrPreconditionNotMet = errors.New("workflow precondition not met")
	// ErrUnknownLexeme is returned when addressing a lexeme that is not stored.
	ErrUnknownLexeme = errors.New("lexeme not in dictionary")
)

// Service is the linguistic engine.
type Service interface {
	Decompose(ctx context.Context, sentence string) ([]model.Analysis, error)
	Morph(ctx context.Context, word string, traits []string) (string, error)
	WordInfo(ctx context.Context, word string) ([]string, error)
}

// Syncer moves whole dictionaries between the store and the service.
type Syncer interface {
	Pull(ctx context.Context) (model.Dictionary, error)
	Push(d model.Dictionary)
	Restore(ctx context.Context) (model.Dictionary, error)
}

// Recorder stores lookup history.
type Recorder interface {
	RecordLookup(ctx context.Context, l model.Lookup) error
}

// State is the progress of a display workflow.
type State int

// Workflow states.
const (
	Idle State = iota
	Requesting
	Displayed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Displayed:
		return "displayed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Selection marks the entry being edited. Lexeme is captured when the
// selection is made, so later rebuilds cannot redirect it.
type Selection struct {
	Handle dictionary.Handle
	Lexeme string
	Active bool
}

// Display is what the decompose and morph panes currently show.
type Display struct {
	DecomposeState State
	Decomposition  model.Decomposition
	MorphState     State
	Morph          *model.MorphResult
}

// Orchestrator owns the dictionary store and runs the workflows against it.
type Orchestrator struct {
	svc    Service
	syncer Syncer
	rec    Recorder
	logger *log.Logger
	now    func() time.Time

	store     *dictionary.Store
	alloc     *dictionary.Allocator
	filter    string
	selection Selection
	display   Display
}

// New returns an orchestrator with an empty dictionary. rec may be nil.
func New(svc Service, syncer Syncer, rec Recorder, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	o := &Orchestrator{
		svc:    svc,
		syncer: syncer,
		rec:    rec,
		logger: logger,
		now:    time.Now,
		store:  dictionary.NewStore(),
		alloc:  dictionary.NewAllocator(),
	}
	o.alloc.Rebuild(o.store, o.filter)
	return o
}

// Store returns the owned dictionary store.
func (o *Orchestrator) Store() *dictionary.Store {
	return o.store
}

// View returns the current addressable view.
func (o *Orchestrator) View() *dictionary.View {
	return o.alloc.Current()
}

// Filter returns the active search filter.
func (o *Orchestrator) Filter() string {
	return o.filter
}

// Selection returns the current edit selection.
func (o *Orchestrator) Selection() Selection {
	return o.selection
}

// Display returns the decompose and morph display state.
func (o *Orchestrator) Display() Display {
	return o.display
}

// Search sets the filter and rebuilds the view.
func (o *Orchestrator) Search(filter string) *dictionary.View {
	o.filter = filter
	return o.alloc.Rebuild(o.store, o.filter)
}

// Select marks the entry addressed by h for editing and returns its lexeme.
func (o *Orchestrator) Select(h dictionary.Handle) (string, error) {
	lexeme, err := o.alloc.Resolve(h)
	if err != nil {
		return "", err
	}
	o.selection = Selection{Handle: h, Lexeme: lexeme, Active: true}
	return lexeme, nil
}

// SelectLexeme marks lexeme for editing without going through a rendered row.
func (o *Orchestrator) SelectLexeme(lexeme string) error {
	if !o.store.Has(lexeme) {
		return fmt.Errorf("%w: %q", ErrUnknownLexeme, lexeme)
	}
	view := o.alloc.Current()
	if h, ok := findHandle(view, lexeme); ok {
		o.selection = Selection{Handle: h, Lexeme: lexeme, Active: true}
		return nil
	}
	view = o.Search("")
	h, _ := findHandle(view, lexeme)
	o.selection = Selection{Handle: h, Lexeme: lexeme, Active: true}
	return nil
}

// ClearSelection drops the edit selection.
func (o *Orchestrator) ClearSelection() {
	o.selection = Selection{}
}

// Delete removes the entry addressed by h in the current view.
func (o *Orchestrator) Delete(h dictionary.Handle) (string, error) {
	lexeme, err := o.alloc.Resolve(h)
	if err != nil {
		return "", err
	}
	o.removeAndSync(lexeme)
	return lexeme, nil
}

// DeleteLexeme removes lexeme. An absent lexeme is a no-op.
func (o *Orchestrator) DeleteLexeme(lexeme string) {
	if !o.store.Has(lexeme) {
		return
	}
	o.removeAndSync(lexeme)
}

func (o *Orchestrator) removeAndSync(lexeme string) {
	o.store.Remove(lexeme)
	o.selection = Selection{}
	o.rebuildAndPush()
}

// FetchLoad pulls the service dictionary.
func (o *Orchestrator) FetchLoad(ctx context.Context) (model.Dictionary, error) {
	return o.syncer.Pull(ctx)
}

// FinishLoad replaces the store with d. On error the store is untouched.
func (o *Orchestrator) FinishLoad(d model.Dictionary, err error) error {
	if err != nil {
		o.logger.Printf("dictionary load failed: %v", err)
		return err
	}
	o.store.Load(d)
	o.alloc.Rebuild(o.store, o.filter)
	return nil
}

// Load pulls the service dictionary into the store.
func (o *Orchestrator) Load(ctx context.Context) error {
	d, err := o.FetchLoad(ctx)
	return o.FinishLoad(d, err)
}

// Restore loads the last locally mirrored dictionary.
func (o *Orchestrator) Restore(ctx context.Context) error {
	d, err := o.syncer.Restore(ctx)
	if err != nil {
		return err
	}
	o.store.Load(d)
	o.alloc.Rebuild(o.store, o.filter)
	return nil
}

func (o *Orchestrator) rebuildAndPush() {
	o.alloc.Rebuild(o.store, o.filter)
	o.syncer.Push(o.store.Snapshot())
}

func (o *Orchestrator) record(ctx context.Context, l model.Lookup) {
	if o.rec == nil {
		return
	}
	l.CreatedAt = o.now()
	if err := o.rec.RecordLookup(ctx, l); err != nil {
		o.logger.Printf("failed to record %s lookup: %v", l.Kind, err)
	}
}

func findHandle(view *dictionary.View, lexeme string) (dictionary.Handle, bool) {
	for _, item := range view.Items() {
		if item.Lexeme == lexeme {
			return item.Handle, true
		}
	}
	return -1, false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MorphRequest is a word with its trait codes.
type MorphRequest struct {
	Word   string
	Traits []string
}

func newMorphRequest(word string, sel model.TraitSelection) MorphRequest {
	return MorphRequest{Word: word, Traits: grammeme.Codes(sel)}
}
