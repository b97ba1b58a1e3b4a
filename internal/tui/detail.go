package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/router"
)

// --- Screen: Detail ---

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.dispatch(app.ViewSelected{View: router.Gallery})

	case key.Matches(msg, m.keys.Copy):
		if m.state.Selected == nil || m.state.Selected.URL == "" {
			return m, nil
		}
		return m, copyURL(m.state.Selected.URL)

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	return m.dispatch(app.KeyPressed{Key: msg.String()})
}

func (m Model) viewDetail(d router.Descriptor) string {
	if d.Empty {
		return headerStyle.Render(d.Title) + "\n\n" + mutedStyle.Render(d.Placeholder) + "\n"
	}

	s := headerStyle.Render(d.Title) + "\n"
	s += mutedStyle.Render(d.Entry.URL) + "\n\n"
	if m.detailRendered == "" {
		s += mutedStyle.Render("Rendering...") + "\n"
		return s
	}
	return s + m.detailViewport.View() + "\n"
}
