// Package tui is the interactive view of one list: browse items in order
// and append new ones inline.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Lists is what the view needs from the registry.
type Lists interface {
	GetList(ctx context.Context, id model.ListID) (model.List, error)
	AddItem(ctx context.Context, id model.ListID, text, priority string) (model.List, error)
}

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item  model.Item
	vocab model.Vocabulary
}

func (i listItem) Title() string       { return model.FormatRow(i.item, i.vocab) }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Text }

// itemDelegate renders single-line rows colored by priority.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+ui.Row(it.item, it.vocab))
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// itemAddedMsg carries the list after a successful append.
type itemAddedMsg struct{ list model.List }

// addFailedMsg carries a rejected or failed append.
type addFailedMsg struct{ err error }

// Model is the Bubble Tea model of the list view.
type Model struct {
	ctx   context.Context
	lists Lists
	id    model.ListID
	vocab model.Vocabulary

	list  list.Model
	total int

	// Inline add
	adding   bool
	ti       textinput.Model
	priority model.Priority
	addErr   string

	width, height int
}

var (
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	priorityBind = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "priority"))
)

// New loads list id and builds the view.
func New(ctx context.Context, lists Lists, id model.ListID, vocab model.Vocabulary) (Model, error) {
	l, err := lists.GetList(ctx, id)
	if err != nil {
		return Model{}, err
	}

	bl := list.New(nil, itemDelegate{}, 0, 0)
	bl.SetShowHelp(true)
	bl.SetShowPagination(true)
	bl.SetShowStatusBar(true)
	bl.SetFilteringEnabled(true)
	bl.Styles.HelpStyle = helpStyle
	bl.Styles.PaginationStyle = helpStyle
	bl.FilterInput.Prompt = "/ "
	bl.SetStatusBarItemName("item", "items")
	bl.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind} }
	bl.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, priorityBind} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter a to-do item"
	ti.CharLimit = 200

	m := Model{
		ctx:      ctx,
		lists:    lists,
		id:       id,
		vocab:    vocab,
		list:     bl,
		ti:       ti,
		priority: model.PriorityMedium,
		width:    80,
		height:   24,
	}
	m.setList(l)
	return m, nil
}

func (m *Model) setList(l model.List) {
	items := make([]list.Item, 0, l.Len())
	for _, it := range l.Items {
		items = append(items, listItem{item: it, vocab: m.vocab})
	}
	m.list.SetItems(items)
	m.total = l.Len()
	t := ui.Current()
	m.list.Title = fmt.Sprintf("%s   %s %d", t.Title.Render("priority to-do"), t.Accent.Render("Total"), m.total)
	m.list.Styles.Title = t.Title
}

// Items returns the rendered rows currently shown.
func (m Model) Items() []string {
	out := make([]string, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok {
			out = append(out, li.Title())
		}
	}
	return out
}

func (m Model) addCmd(text string, p model.Priority) tea.Cmd {
	return func() tea.Msg {
		l, err := m.lists.AddItem(m.ctx, m.id, text, string(p))
		if err != nil {
			return addFailedMsg{err: err}
		}
		return itemAddedMsg{list: l}
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil
	case itemAddedMsg:
		m.setList(x.list)
		m.list.Select(len(m.list.Items()) - 1)
		return m, nil
	case addFailedMsg:
		log.ErrorErr(log.CatUI, "add item failed", x.err, "list", m.id)
		m.adding = true
		m.addErr = x.err.Error()
		m.ti.Focus()
		return m, nil
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				d, err := model.NewDraft(m.ti.Value(), string(m.priority))
				if err != nil {
					m.addErr = err.Error()
					return m, nil
				}
				m.addErr = ""
				m.adding = false
				m.ti.SetValue("")
				m.ti.Blur()
				return m, m.addCmd(d.Text, d.Priority)
			case "tab":
				m.priority = m.priority.Next()
				return m, nil
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if x, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch x.String() {
		case "q", "esc":
			return m, tea.Quit
		case "a":
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Focus()
			return m, textinput.Blink
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	listHeight := m.height - 4
	if m.adding {
		listHeight = m.height - 7
	}
	m.list.SetSize(m.width-4, listHeight)

	content := m.list.View()
	if m.adding {
		t := ui.Current()
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		title := "Add new item  " + t.PriorityStyle(m.priority).Render("prioridade "+m.priority.Label(m.vocab)) +
			"  " + helpStyle.Render("(tab: priority, enter: add, esc: cancel)")
		if m.addErr != "" {
			title += "\n" + t.Error.Render(m.addErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return ui.PanelString([]string{content})
}

// Run starts the interactive view for list id.
func Run(ctx context.Context, lists Lists, id model.ListID, vocab model.Vocabulary) error {
	m, err := New(ctx, lists, id, vocab)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
