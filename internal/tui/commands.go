package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/workflow"
)

type decomposeMsg struct {
	sentence string
	analyses []model.Analysis
	err      error
}

type morphMsg struct {
	req workflow.MorphRequest
	res model.MorphResult
	err error
}

type editMsg struct {
	res workflow.EditResult
	err error
}

type addMsg struct {
	lexeme string
	traits []string
	err    error
}

type loadMsg struct {
	dict model.Dictionary
	note string
	err  error
}

func (m *Model) decomposeCmd(sentence string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		analyses, err := orch.FetchDecompose(ctx, sentence)
		return decomposeMsg{sentence: sentence, analyses: analyses, err: err}
	}
}

func (m *Model) morphCmd(req workflow.MorphRequest) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		res, err := orch.FetchMorph(ctx, req)
		return morphMsg{req: req, res: res, err: err}
	}
}

func (m *Model) editCmd(req workflow.EditRequest) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		res, err := orch.FetchEdit(ctx, req)
		return editMsg{res: res, err: err}
	}
}

func (m *Model) addCmd(lexeme string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		traits, err := orch.FetchEntry(ctx, lexeme)
		return addMsg{lexeme: lexeme, traits: traits, err: err}
	}
}

func (m *Model) loadCmd(note string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		d, err := orch.FetchLoad(ctx)
		return loadMsg{dict: d, note: note, err: err}
	}
}
