package workflow

import (
	"context"
	"fmt"

	"github.com/verte-zerg/morfo/internal/dictionary"
	"github.com/verte-zerg/morfo/internal/model"
)

// EditRequest captures the edit inputs at the moment the user asked for it.
type EditRequest struct {
	Morph     MorphRequest
	OldLexeme string
}

// EditResult is the outcome of both remote calls of an edit.
type EditResult struct {
	Request EditRequest
	Morphed string
	Traits  []string
}

// BeginEdit checks that a word and a selection are present.
func (o *Orchestrator) BeginEdit(word string, sel model.TraitSelection) (EditRequest, error) {
	if blank(word) || !o.selection.Active {
		return EditRequest{}, ErrPreconditionNotMet
	}
	return EditRequest{
		Morph:     newMorphRequest(word, sel),
		OldLexeme: o.selection.Lexeme,
	}, nil
}

// FetchEdit morphs the word and looks up the morphed form.
func (o *Orchestrator) FetchEdit(ctx context.Context, req EditRequest) (EditResult, error) {
	morphed, err := o.svc.Morph(ctx, req.Morph.Word, req.Morph.Traits)
	if err != nil {
		return EditResult{Request: req}, fmt.Errorf("morph %q: %w", req.Morph.Word, err)
	}
	traits, err := o.svc.WordInfo(ctx, morphed)
	if err != nil {
		return EditResult{Request: req, Morphed: morphed}, fmt.Errorf("wordinfo %q: %w", morphed, err)
	}
	return EditResult{Request: req, Morphed: morphed, Traits: traits}, nil
}

// FinishEdit inserts the morphed entry, then removes the pre-edit lexeme,
// then rebuilds and pushes once. On error nothing changes.
func (o *Orchestrator) FinishEdit(ctx context.Context, res EditResult, err error) error {
	req := res.Request
	if err != nil {
		o.logger.Printf("edit of %q failed: %v", req.OldLexeme, err)
		o.record(ctx, model.Lookup{Kind: model.LookupMorph, Input: req.Morph.Word, Traits: req.Morph.Traits, Result: err.Error()})
		return err
	}
	o.record(ctx, model.Lookup{Kind: model.LookupMorph, Input: req.Morph.Word, Traits: req.Morph.Traits, Result: res.Morphed, OK: true})

	o.store.Put(res.Morphed, dictionary.EntryFromTraits(res.Traits))
	if req.OldLexeme != res.Morphed {
		o.store.Remove(req.OldLexeme)
	}
	o.selection = Selection{}
	o.rebuildAndPush()
	return nil
}

// EditAndRegenerate replaces the selected entry with the entry of the word
// morphed by sel.
func (o *Orchestrator) EditAndRegenerate(ctx context.Context, word string, sel model.TraitSelection) (EditResult, error) {
	req, err := o.BeginEdit(word, sel)
	if err != nil {
		return EditResult{}, err
	}
	res, err := o.FetchEdit(ctx, req)
	if err := o.FinishEdit(ctx, res, err); err != nil {
		return EditResult{}, err
	}
	return res, nil
}

// BeginAdd rejects blank and already stored lexemes before any remote call.
func (o *Orchestrator) BeginAdd(lexeme string) (string, error) {
	if blank(lexeme) {
		return "", ErrPreconditionNotMet
	}
	if o.store.Has(lexeme) {
		return "", fmt.Errorf("%w: %q", dictionary.ErrDuplicateLexeme, lexeme)
	}
	return lexeme, nil
}

// FetchEntry looks up the trait list of lexeme.
func (o *Orchestrator) FetchEntry(ctx context.Context, lexeme string) ([]string, error) {
	return o.svc.WordInfo(ctx, lexeme)
}

// FinishAdd inserts the looked-up entry, rebuilds and pushes.
func (o *Orchestrator) FinishAdd(lexeme string, traits []string, err error) (model.DictionaryEntry, error) {
	if err != nil {
		o.logger.Printf("lookup of %q failed: %v", lexeme, err)
		return model.DictionaryEntry{}, err
	}
	entry, err := o.store.AddFromTraits(lexeme, traits)
	if err != nil {
		o.logger.Printf("add of %q failed: %v", lexeme, err)
		return model.DictionaryEntry{}, err
	}
	o.rebuildAndPush()
	return entry, nil
}

// AddLexeme looks up lexeme and adds it to the dictionary.
func (o *Orchestrator) AddLexeme(ctx context.Context, lexeme string) (model.DictionaryEntry, error) {
	lexeme, err := o.BeginAdd(lexeme)
	if err != nil {
		return model.DictionaryEntry{}, err
	}
	traits, err := o.FetchEntry(ctx, lexeme)
	return o.FinishAdd(lexeme, traits, err)
}
