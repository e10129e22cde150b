// Package tui provides a terminal browser for a document's comments:
// scroll through them, toggle resolved, delete. Orphaned and unattached
// comments are shown muted.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/core/ports/driving"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// item adapts a comment for the list component.
type item struct {
	comment  domain.Comment
	strategy domain.AnchorType
	span     domain.Span
	attached bool
}

// Title renders the comment's headline row.
func (i item) Title() string {
	state := ""
	switch {
	case i.comment.Orphaned():
		state = " [orphaned]"
	case !i.attached:
		state = " [unattached]"
	}
	title := fmt.Sprintf("%s · %s%s", i.strategy, i.comment.Author, state)
	if i.comment.Resolved {
		title += " ✓"
	}
	if !i.attached {
		return mutedStyle.Render(title)
	}
	return title
}

// Description renders the comment text and its anchored fragment.
func (i item) Description() string {
	desc := i.comment.Text
	if frag := i.comment.Anchor.Fragment(); frag != "" {
		desc += " — “" + frag + "”"
	}
	if i.attached {
		desc += fmt.Sprintf(" [%d, %d)", i.span.From, i.span.To)
	}
	if !i.attached {
		return mutedStyle.Render(desc)
	}
	return desc
}

// FilterValue filters on comment text and author.
func (i item) FilterValue() string {
	return i.comment.Author + " " + i.comment.Text
}

// Model is the comment browser.
type Model struct {
	editor  driving.Editor
	saveDoc func() error
	list    list.Model
	status  string
}

// New creates the browser over an editor session. saveDoc persists the
// document after an operation that removes markers.
func New(editor driving.Editor, saveDoc func() error) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Comments"
	l.SetShowHelp(true)
	m := Model{editor: editor, saveDoc: saveDoc, list: l}
	m.reload()
	return m
}

// reload rebuilds the list items from the editor's stores.
func (m *Model) reload() {
	var items []list.Item
	for _, strategy := range domain.AnchorTypes() {
		for _, c := range m.editor.Comments(strategy) {
			it := item{comment: c, strategy: strategy}
			if span, err := m.editor.ResolveAnchor(c.ID); err == nil {
				it.span = span
				it.attached = true
			}
			items = append(items, it)
		}
	}
	m.list.SetItems(items)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if it, ok := m.list.SelectedItem().(item); ok {
				if err := m.editor.ToggleResolved(context.Background(), it.comment.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = "toggled resolved"
					m.reload()
				}
			}
			return m, nil
		case "d":
			if it, ok := m.list.SelectedItem().(item); ok {
				if err := m.editor.DeleteComment(context.Background(), it.comment.ID); err != nil {
					m.status = err.Error()
				} else if err := m.saveDoc(); err != nil {
					m.status = err.Error()
				} else {
					m.status = "deleted " + it.comment.ID
					m.reload()
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	status := m.status
	if status == "" {
		status = "r: toggle resolved · d: delete · q: quit"
	}
	return titleStyle.Render("marginalia") + "\n" + m.list.View() + "\n" + statusStyle.Render(status)
}

// Run starts the browser and blocks until it exits.
func Run(editor driving.Editor, saveDoc func() error) error {
	_, err := tea.NewProgram(New(editor, saveDoc), tea.WithAltScreen()).Run()
	return err
}
