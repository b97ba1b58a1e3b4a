package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/router"
)

// --- Screen: Gallery ---

func (m Model) updateGallery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.focus == focusTags {
			if m.tagCursor > 0 {
				m.tagCursor--
			}
		} else if m.entryCursor > 0 {
			m.entryCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.focus == focusTags {
			if m.tagCursor < len(m.state.Tags)-1 {
				m.tagCursor++
			}
		} else if m.entryCursor < len(m.state.Entries)-1 {
			m.entryCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusTags {
			m.focus = focusEntries
		} else {
			m.focus = focusTags
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.focus == focusTags {
			if len(m.state.Tags) == 0 {
				return m, nil
			}
			return m.dispatch(app.TagSelected{Tag: m.state.Tags[m.tagCursor]})
		}
		if len(m.state.Entries) == 0 {
			return m, nil
		}
		return m.dispatch(app.EntrySelected{Entry: &m.state.Entries[m.entryCursor]})

	case key.Matches(msg, m.keys.Clear):
		return m.dispatch(app.TagSelected{Tag: ""})

	case key.Matches(msg, m.keys.Unselect):
		return m.dispatch(app.EntrySelected{Entry: nil})

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.searchInput.SetValue(m.state.Filter.Buffer)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Range):
		m.focus = focusRange
		m.rangeErr = ""
		m.rangeInput.SetValue("")
		if r := m.state.Filter.DateRange(); r != nil {
			m.rangeInput.SetValue(r.String())
		}
		m.rangeInput.CursorEnd()
		return m, m.rangeInput.Focus()

	case key.Matches(msg, m.keys.Sort):
		next := query.ByURL
		if m.state.Filter.Sort == query.ByURL {
			next = query.ByDate
		}
		return m.dispatch(app.SortChanged{Key: next})

	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(app.RequestRefresh{})
	}

	return m.dispatch(app.KeyPressed{Key: msg.String()})
}

// updateSearch feeds keys to the search input. Every key is also reported
// to the reducer, which submits on enter.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.searchInput.Blur()
		m.focus = focusEntries
		return m, nil
	}

	if msg.String() == app.SubmitKey {
		m.searchInput.Blur()
		m.focus = focusEntries
		return m.dispatch(app.SearchKeyPressed{Key: msg.String()})
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)

	if text := m.searchInput.Value(); text != m.state.Filter.Buffer {
		m, cmd = m.dispatch(app.SearchTextChanged{Text: text})
		cmds = append(cmds, cmd)
	}
	m, cmd = m.dispatch(app.SearchKeyPressed{Key: msg.String()})
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateRange(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.rangeInput.Blur()
		m.rangeErr = ""
		m.focus = focusEntries
		return m, nil

	case tea.KeyEnter:
		r, err := query.ParseRange(m.rangeInput.Value())
		if err != nil {
			m.rangeErr = err.Error()
			return m, nil
		}
		m.rangeInput.Blur()
		m.rangeErr = ""
		m.focus = focusEntries
		if r.Equal(m.state.Filter.DateRange()) && !m.state.Filter.Searching() {
			return m, nil
		}
		return m.dispatch(app.DateRangeSelected{Range: r})
	}

	var cmd tea.Cmd
	m.rangeInput, cmd = m.rangeInput.Update(msg)
	return m, cmd
}

func (m Model) viewGallery(d router.Descriptor) string {
	leftWidth, rightWidth, paneHeight := m.galleryLayout()

	controls := m.viewControls(d)

	// Left pane: entry cards
	leftContent := headerStyle.Render("Entries") + mutedStyle.Render(fmt.Sprintf(" (%d)", len(d.Entries))) + "\n\n"
	if d.Empty {
		leftContent += mutedStyle.Render(d.Placeholder)
	} else {
		first, last := visibleWindow(len(d.Entries), m.entryCursor, (paneHeight-2)/entryCardHeight)
		for i := first; i < last; i++ {
			leftContent += m.viewEntryCard(d.Entries[i], i == m.entryCursor, leftWidth-6)
		}
	}

	lp := leftPaneStyle
	if m.focus == focusEntries {
		lp = focusedBorderStyle
	}
	leftPane := lp.Width(leftWidth).Height(paneHeight).Render(leftContent)

	// Right pane: tag cloud
	rightContent := headerStyle.Render("Tags") + "\n\n"
	if len(d.Tags) == 0 {
		rightContent += mutedStyle.Render("No tags")
	} else {
		first, last := visibleWindow(len(d.Tags), m.tagCursor, paneHeight-2)
		for i := first; i < last; i++ {
			rightContent += m.viewTag(d.Tags[i], d.ActiveTag, i == m.tagCursor) + "\n"
		}
	}

	rp := rightPaneStyle
	if m.focus == focusTags {
		rp = focusedBorderStyle
	}
	rightPane := rp.Width(rightWidth).Height(paneHeight).Render(rightContent)

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	return lipgloss.JoinVertical(lipgloss.Left, controls, body)
}

func (m Model) viewControls(d router.Descriptor) string {
	var search string
	switch {
	case m.focus == focusSearch:
		search = m.searchInput.View()
	case d.Searching:
		search = controlLabelStyle.Render("search ") + d.Search
	default:
		search = controlLabelStyle.Render("search ") + mutedStyle.Render("press / to search")
	}

	var timeline string
	switch {
	case m.focus == focusRange:
		timeline = m.rangeInput.View()
		if m.rangeErr != "" {
			timeline += " " + errorStyle.Render(m.rangeErr)
		}
	case d.Range != nil:
		timeline = controlLabelStyle.Render("range ") + d.Range.String()
	default:
		timeline = controlLabelStyle.Render("range ") + mutedStyle.Render("all time")
	}

	filter := controlLabelStyle.Render("tag ") + mutedStyle.Render("none")
	if d.ActiveTag != "" {
		filter = controlLabelStyle.Render("tag ") + activeTagStyle.Render(d.ActiveTag)
	}
	sort := controlLabelStyle.Render("sort ") + d.Sort.String()

	return search + "\n" + timeline + "   " + filter + "   " + sort + "\n"
}

func (m Model) viewEntryCard(e catalog.CacheEntry, selected bool, width int) string {
	label := truncate(e.Label(), width)
	meta := ""
	if !e.Timestamp.IsZero() {
		meta = e.Timestamp.Format(query.DateLayout)
	}
	for _, t := range e.Tags {
		meta += " #" + t
	}
	meta = truncate(meta, width)

	marker := "    "
	if m.state.Selected != nil && detailKey(*m.state.Selected) == detailKey(e) {
		marker = "  * "
	}
	if selected {
		return selectedItemStyle.Render("  > "+label) + "\n" + mutedStyle.Render("    "+meta) + "\n"
	}
	return normalItemStyle.Render(marker+label) + "\n" + mutedStyle.Render("    "+meta) + "\n"
}

func (m Model) viewTag(tag, active string, cursor bool) string {
	style := tagStyle
	if tag == active {
		style = activeTagStyle
	}
	if cursor && m.focus == focusTags {
		return selectedItemStyle.Render("> ") + style.Render(tag)
	}
	return "  " + style.Render(tag)
}

// visibleWindow returns the [first, last) slice of n items of which at most
// size fit, keeping cursor in view.
func visibleWindow(n, cursor, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	first := cursor - size/2
	if first < 0 {
		first = 0
	}
	if first+size > n {
		first = n - size
	}
	return first, first + size
}

func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
