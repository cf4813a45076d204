// Package tui provides the Bubble Tea morphology workbench.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/morfo/internal/dictionary"
	"github.com/verte-zerg/morfo/internal/grammeme"
	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/workflow"
)

type focusArea int

const (
	focusSentence focusArea = iota
	focusWord
	focusGender
	focusNumber
	focusCase
	focusSearch
	focusTable
	focusCount
)

func (f focusArea) isSelector() bool {
	return f >= focusGender && f <= focusCase
}

func (f focusArea) isText() bool {
	return f == focusSentence || f == focusWord || f == focusSearch
}

const (
	decompositionHeight = 6
	// title, sentence, decomposition, word and traits, morph, search
	topHeight    = 5 + decompositionHeight
	footerHeight = 2
)

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	activeLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	modalStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
)

// Options configures the workbench.
type Options struct {
	// Sentence prefills the sentence input.
	Sentence string
	// Autoload pulls the dictionary when the program starts.
	Autoload bool
}

// Model implements the Bubble Tea workbench. All orchestrator state is
// touched from Update only; remote calls run inside commands.
type Model struct {
	orch     *workflow.Orchestrator
	ctx      context.Context
	autoload bool

	sentence textinput.Model
	word     textinput.Model
	search   textinput.Model
	addInput textinput.Model
	adding   bool

	// traits holds the selected index per grammeme category; 0 is unselected.
	traits   [3]int
	table    table.Model
	focus    focusArea
	showHelp bool

	status    string
	statusErr bool
	inFlight  int

	width  int
	height int
}

// NewModel constructs the workbench around orch.
func NewModel(ctx context.Context, orch *workflow.Orchestrator, opts Options) *Model {
	m := &Model{
		orch:     orch,
		ctx:      ctx,
		autoload: opts.Autoload,
		sentence: newInput("Sentence: ", "мама мыла раму"),
		word:     newInput("Word: ", "дом"),
		search:   newInput("Search: ", "filter lexemes"),
		addInput: newInput("Lexeme: ", "кот"),
		table:    newDictionaryTable(),
	}
	m.sentence.SetValue(opts.Sentence)
	m.sentence.Focus()
	m.refreshTable()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.PromptStyle = labelStyle
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newDictionaryTable() table.Model {
	t := table.New(
		table.WithColumns(dictionaryColumns(80)),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func dictionaryColumns(width int) []table.Column {
	lexemeWidth := 18
	entryWidth := maxInt(10, width-lexemeWidth-5)
	return []table.Column{
		{Title: " ", Width: 1},
		{Title: "Lexeme", Width: lexemeWidth},
		{Title: "Entry", Width: entryWidth},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.autoload {
		return tea.Batch(textinput.Blink, m.startLoad(""))
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case decomposeMsg:
		m.inFlight--
		if err := m.orch.FinishDecompose(m.ctx, msg.sentence, msg.analyses, msg.err); err != nil {
			m.setError("decompose failed", err)
			return m, nil
		}
		return m, m.startLoad(fmt.Sprintf("Decomposed %d lexemes", len(msg.analyses)))
	case morphMsg:
		m.inFlight--
		if err := m.orch.FinishMorph(m.ctx, msg.req, msg.res, msg.err); err != nil {
			m.setError("morph failed", err)
			return m, nil
		}
		m.setStatus(workflow.FormatMorph(msg.res))
		return m, nil
	case editMsg:
		m.inFlight--
		if err := m.orch.FinishEdit(m.ctx, msg.res, msg.err); err != nil {
			m.setError("update failed", err)
			return m, nil
		}
		m.refreshTable()
		m.setStatus(fmt.Sprintf("Replaced %q with %q", msg.res.Request.OldLexeme, msg.res.Morphed))
		return m, nil
	case addMsg:
		m.inFlight--
		if _, err := m.orch.FinishAdd(msg.lexeme, msg.traits, msg.err); err != nil {
			m.setError("add failed", err)
			return m, nil
		}
		m.refreshTable()
		m.setStatus(fmt.Sprintf("Added %q", msg.lexeme))
		return m, nil
	case loadMsg:
		m.inFlight--
		if err := m.orch.FinishLoad(msg.dict, msg.err); err != nil {
			m.setError("dictionary load failed", err)
			return m, nil
		}
		m.refreshTable()
		if msg.note != "" {
			m.setStatus(msg.note)
		} else {
			m.setStatus(fmt.Sprintf("Loaded %d entries", m.orch.Store().Len()))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.adding {
		return m.updateAddPrompt(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	switch msg.Type {
	case tea.KeyTab:
		return m, m.setFocus(m.focus + 1)
	case tea.KeyShiftTab:
		return m, m.setFocus(m.focus - 1)
	case tea.KeyEnter:
		return m, m.submit()
	case tea.KeyCtrlL:
		m.setStatus("Loading dictionary")
		return m, m.startLoad("")
	case tea.KeyCtrlA:
		return m, m.startAdd()
	case tea.KeyCtrlE:
		m.selectRow()
		return m, nil
	case tea.KeyCtrlD:
		m.deleteRow()
		return m, nil
	case tea.KeyCtrlU:
		return m, m.startEdit()
	}
	if m.focus.isSelector() {
		switch msg.Type {
		case tea.KeyLeft:
			m.cycleTrait(-1)
			return m, nil
		case tea.KeyRight:
			m.cycleTrait(1)
			return m, nil
		}
	}
	if !m.focus.isText() && msg.String() == "?" {
		m.showHelp = true
		return m, nil
	}
	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusSentence:
		m.sentence, cmd = m.sentence.Update(msg)
	case focusWord:
		m.word, cmd = m.word.Update(msg)
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.applySearch()
		}
	case focusTable:
		m.table, cmd = m.table.Update(msg)
	}
	return cmd
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	if f < 0 {
		f = focusCount - 1
	}
	if f >= focusCount {
		f = 0
	}
	m.focus = f
	m.sentence.Blur()
	m.word.Blur()
	m.search.Blur()
	m.table.Blur()
	m.sentence.PromptStyle = labelStyle
	m.word.PromptStyle = labelStyle
	m.search.PromptStyle = labelStyle
	switch f {
	case focusSentence:
		m.sentence.PromptStyle = activeLabelStyle
		return m.sentence.Focus()
	case focusWord:
		m.word.PromptStyle = activeLabelStyle
		return m.word.Focus()
	case focusSearch:
		m.search.PromptStyle = activeLabelStyle
		return m.search.Focus()
	case focusTable:
		m.table.Focus()
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	switch {
	case m.focus == focusSentence:
		sentence, err := m.orch.BeginDecompose(m.sentence.Value())
		if err != nil {
			m.setStatus("Type a sentence to decompose")
			return nil
		}
		m.inFlight++
		return m.decomposeCmd(sentence)
	case m.focus == focusWord || m.focus.isSelector():
		req, err := m.orch.BeginMorph(m.word.Value(), m.selection())
		if err != nil {
			m.setStatus("Type a word to morph")
			return nil
		}
		m.inFlight++
		return m.morphCmd(req)
	case m.focus == focusSearch:
		m.applySearch()
	case m.focus == focusTable:
		m.selectRow()
	}
	return nil
}

func (m *Model) startLoad(note string) tea.Cmd {
	m.inFlight++
	return m.loadCmd(note)
}

func (m *Model) startEdit() tea.Cmd {
	req, err := m.orch.BeginEdit(m.word.Value(), m.selection())
	if err != nil {
		m.setStatus("Select an entry with ctrl+e and type a word first")
		return nil
	}
	m.inFlight++
	m.setStatus(fmt.Sprintf("Updating %q", req.OldLexeme))
	return m.editCmd(req)
}

func (m *Model) startAdd() tea.Cmd {
	m.adding = true
	m.addInput.SetValue("")
	return m.addInput.Focus()
}

func (m *Model) updateAddPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.addInput.Blur()
		return m, nil
	case tea.KeyEnter:
		lexeme, err := m.orch.BeginAdd(m.addInput.Value())
		if errors.Is(err, dictionary.ErrDuplicateLexeme) {
			m.setError("add failed", err)
			return m, nil
		}
		if err != nil {
			m.setStatus("Type a lexeme to add")
			return m, nil
		}
		m.adding = false
		m.addInput.Blur()
		m.inFlight++
		m.setStatus(fmt.Sprintf("Looking up %q", lexeme))
		return m, m.addCmd(lexeme)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m *Model) currentItem() (dictionary.Item, bool) {
	return m.orch.View().At(m.table.Cursor())
}

func (m *Model) selectRow() {
	item, ok := m.currentItem()
	if !ok {
		m.setStatus("No entry to select")
		return
	}
	lexeme, err := m.orch.Select(item.Handle)
	if err != nil {
		m.setError("select failed", err)
		return
	}
	m.word.SetValue(lexeme)
	m.word.CursorEnd()
	m.refreshTable()
	m.setStatus(fmt.Sprintf("Editing %q: pick traits and press ctrl+u", lexeme))
}

func (m *Model) deleteRow() {
	item, ok := m.currentItem()
	if !ok {
		m.setStatus("No entry to delete")
		return
	}
	lexeme, err := m.orch.Delete(item.Handle)
	if err != nil {
		m.setError("delete failed", err)
		return
	}
	m.refreshTable()
	m.setStatus(fmt.Sprintf("Deleted %q", lexeme))
}

func (m *Model) applySearch() {
	m.orch.Search(m.search.Value())
	m.refreshTable()
}

func (m *Model) cycleTrait(delta int) {
	i := int(m.focus - focusGender)
	n := len(grammeme.Values(grammeme.Categories()[i])) + 1
	m.traits[i] = (m.traits[i] + delta + n) % n
}

func (m *Model) traitLabel(i int) string {
	if m.traits[i] == 0 {
		return ""
	}
	return grammeme.Values(grammeme.Categories()[i])[m.traits[i]-1].Label
}

func (m *Model) selection() model.TraitSelection {
	return model.TraitSelection{
		Gender: m.traitLabel(0),
		Number: m.traitLabel(1),
		Case:   m.traitLabel(2),
	}
}

func (m *Model) refreshTable() {
	view := m.orch.View()
	sel := m.orch.Selection()
	rows := make([]table.Row, 0, view.Len())
	for _, item := range view.Items() {
		marker := ""
		if sel.Active && item.Lexeme == sel.Lexeme {
			marker = "*"
		}
		rows = append(rows, table.Row{marker, item.Lexeme, dictionary.Describe(item.Entry)})
	}
	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetColumns(dictionaryColumns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(2, m.height-topHeight-footerHeight))
	for _, input := range []*textinput.Model{&m.sentence, &m.word, &m.search} {
		input.Width = maxInt(10, m.width-lipgloss.Width(input.Prompt)-2)
	}
	m.word.Width = maxInt(10, m.width/3)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = fmt.Sprintf("%s: %v", prefix, err)
	m.statusErr = true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.adding {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderAddPrompt())
	}
	if m.showHelp {
		return fitLines(renderHelp(), m.width, m.height)
	}
	top := strings.Join([]string{
		m.renderTitle(),
		m.sentence.View(),
		m.renderDecomposition(),
		m.renderWordLine(),
		m.renderMorph(),
		m.search.View(),
	}, "\n")
	tableHeight := maxInt(2, m.height-topHeight-footerHeight)
	return strings.Join([]string{
		fitLines(top, m.width, topHeight),
		fitLines(m.table.View(), m.width, tableHeight),
		fitLines(m.renderFooter(), m.width, footerHeight),
	}, "\n")
}

func (m *Model) renderTitle() string {
	title := titleStyle.Render("morfo")
	count := mutedStyle.Render(fmt.Sprintf("%d entries", m.orch.Store().Len()))
	if filter := m.orch.Filter(); filter != "" {
		count = mutedStyle.Render(fmt.Sprintf("%d of %d entries", m.orch.View().Len(), m.orch.Store().Len()))
	}
	return title + "  " + count
}

func (m *Model) renderDecomposition() string {
	d := m.orch.Display()
	var body string
	switch {
	case len(d.Decomposition.Analyses) > 0:
		body = wrapText(workflow.FormatDecomposition(d.Decomposition), m.width-2)
	case d.DecomposeState == workflow.Requesting:
		body = mutedStyle.Render("Decomposing...")
	default:
		body = mutedStyle.Render("No decomposition yet.")
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return fitLines(strings.Join(lines, "\n"), m.width, decompositionHeight)
}

func (m *Model) renderWordLine() string {
	parts := []string{m.word.View()}
	for i, c := range grammeme.Categories() {
		label := labelStyle
		if m.focus == focusGender+focusArea(i) {
			label = activeLabelStyle
		}
		value := m.traitLabel(i)
		if value == "" {
			value = "-"
		}
		parts = append(parts, label.Render(categoryTitle(c)+":")+" "+valueStyle.Render("< "+value+" >"))
	}
	return truncateLine(strings.Join(parts, "  "), m.width)
}

func categoryTitle(c grammeme.Category) string {
	switch c {
	case grammeme.Gender:
		return "Gender"
	case grammeme.Number:
		return "Number"
	default:
		return "Case"
	}
}

func (m *Model) renderMorph() string {
	d := m.orch.Display()
	label := labelStyle.Render("Morph: ")
	switch {
	case d.MorphState == workflow.Requesting:
		return label + mutedStyle.Render("...")
	case d.Morph == nil:
		return label + mutedStyle.Render("-")
	default:
		return label + valueStyle.Render(workflow.FormatMorph(*d.Morph))
	}
}

func (m *Model) renderFooter() string {
	status := m.status
	if m.inFlight > 0 {
		status = fmt.Sprintf("[%d pending] %s", m.inFlight, status)
	}
	status = truncateLine(status, m.width)
	if m.statusErr {
		status = errorStyle.Render(status)
	}
	help := "tab: focus  enter: run  ctrl+l: load  ctrl+a: add  ctrl+e: select  ctrl+d: delete  ctrl+u: update  ?: help  ctrl+c: quit"
	return status + "\n" + mutedStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderAddPrompt() string {
	lines := []string{"Add lexeme (enter to look up, esc to cancel)", m.addInput.View()}
	if m.statusErr {
		lines = append(lines, errorStyle.Render(m.status))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func renderHelp() string {
	rows := [][2]string{
		{"tab / shift+tab", "move focus"},
		{"enter", "decompose sentence, morph word, apply search or select row"},
		{"left / right", "cycle gender, number or case"},
		{"ctrl+l", "load dictionary from the service"},
		{"ctrl+a", "add a lexeme"},
		{"ctrl+e", "select the highlighted entry for editing"},
		{"ctrl+u", "morph the word and replace the selected entry"},
		{"ctrl+d", "delete the highlighted entry"},
		{"ctrl+c", "quit"},
	}
	lines := []string{titleStyle.Render("Keys"), ""}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %-16s %s", row[0], row[1]))
	}
	lines = append(lines, "", mutedStyle.Render("press any key to close"))
	return strings.Join(lines, "\n")
}
