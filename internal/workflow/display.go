package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/morfo/internal/model"
)

// BeginDecompose validates the sentence and marks the decompose pane busy.
func (o *Orchestrator) BeginDecompose(sentence string) (string, error) {
	if blank(sentence) {
		return "", ErrPreconditionNotMet
	}
	o.display.DecomposeState = Requesting
	return sentence, nil
}

// FetchDecompose asks the service to decompose sentence.
func (o *Orchestrator) FetchDecompose(ctx context.Context, sentence string) ([]model.Analysis, error) {
	return o.svc.Decompose(ctx, sentence)
}

// FinishDecompose displays the analyses. On error the previous decomposition
// stays on display.
func (o *Orchestrator) FinishDecompose(ctx context.Context, sentence string, analyses []model.Analysis, err error) error {
	if err != nil {
		o.display.DecomposeState = Failed
		o.logger.Printf("decompose failed: %v", err)
		o.record(ctx, model.Lookup{Kind: model.LookupDecompose, Input: sentence, Result: err.Error()})
		return err
	}
	o.display.DecomposeState = Displayed
	o.display.Decomposition = model.Decomposition{
		Sentence: sentence,
		Analyses: append([]model.Analysis(nil), analyses...),
	}
	o.record(ctx, model.Lookup{
		Kind:   model.LookupDecompose,
		Input:  sentence,
		Result: fmt.Sprintf("%d lexemes", len(analyses)),
		OK:     true,
	})
	return nil
}

// Decompose displays the decomposition of sentence and then reloads the
// dictionary. A failed reload is returned after the display is updated.
func (o *Orchestrator) Decompose(ctx context.Context, sentence string) (model.Decomposition, error) {
	sentence, err := o.BeginDecompose(sentence)
	if err != nil {
		return model.Decomposition{}, err
	}
	analyses, err := o.FetchDecompose(ctx, sentence)
	if err := o.FinishDecompose(ctx, sentence, analyses, err); err != nil {
		return model.Decomposition{}, err
	}
	return o.display.Decomposition, o.Load(ctx)
}

// BeginMorph maps the selection to codes and marks the morph pane busy.
func (o *Orchestrator) BeginMorph(word string, sel model.TraitSelection) (MorphRequest, error) {
	if blank(word) {
		return MorphRequest{}, ErrPreconditionNotMet
	}
	o.display.MorphState = Requesting
	return newMorphRequest(word, sel), nil
}

// FetchMorph asks the service to inflect the word.
func (o *Orchestrator) FetchMorph(ctx context.Context, req MorphRequest) (model.MorphResult, error) {
	morphed, err := o.svc.Morph(ctx, req.Word, req.Traits)
	if err != nil {
		return model.MorphResult{}, err
	}
	return model.MorphResult{Word: req.Word, Traits: req.Traits, Morphed: morphed}, nil
}

// FinishMorph displays the result. On error the morph pane is cleared.
func (o *Orchestrator) FinishMorph(ctx context.Context, req MorphRequest, res model.MorphResult, err error) error {
	if err != nil {
		o.display.MorphState = Failed
		o.display.Morph = nil
		o.logger.Printf("morph failed: %v", err)
		o.record(ctx, model.Lookup{Kind: model.LookupMorph, Input: req.Word, Traits: req.Traits, Result: err.Error()})
		return err
	}
	o.display.MorphState = Displayed
	o.display.Morph = &res
	o.record(ctx, model.Lookup{Kind: model.LookupMorph, Input: req.Word, Traits: req.Traits, Result: res.Morphed, OK: true})
	return nil
}

// Morph inflects word by the selected traits and displays the result.
func (o *Orchestrator) Morph(ctx context.Context, word string, sel model.TraitSelection) (model.MorphResult, error) {
	req, err := o.BeginMorph(word, sel)
	if err != nil {
		return model.MorphResult{}, err
	}
	res, err := o.FetchMorph(ctx, req)
	if err := o.FinishMorph(ctx, req, res, err); err != nil {
		return model.MorphResult{}, err
	}
	return res, nil
}

// FormatMorph renders "word -> morphed".
func FormatMorph(res model.MorphResult) string {
	return fmt.Sprintf("%s -> %s", res.Word, res.Morphed)
}

// FormatAnalysis renders one decomposition row.
func FormatAnalysis(a model.Analysis) string {
	return fmt.Sprintf("%q: %s", a.Lexeme, a.Description)
}

// FormatDecomposition renders all rows, one per line.
func FormatDecomposition(d model.Decomposition) string {
	lines := make([]string, 0, len(d.Analyses))
	for _, a := range d.Analyses {
		lines = append(lines, FormatAnalysis(a))
	}
	return strings.Join(lines, "\n")
}
