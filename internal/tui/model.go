package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/logging"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/router"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// focus is the gallery widget receiving keys.
type focus int

const (
	focusEntries focus = iota
	focusTags
	focusSearch
	focusRange
)

// Options configures a Model.
type Options struct {
	Server string // shown on the settings view
	Log    *logrus.Entry
}

// Model is the root Bubble Tea model for memex. All catalog state lives in
// app.State and only changes through app.Reduce.
type Model struct {
	ctx     context.Context
	fetcher app.Fetcher
	log     *logrus.Entry
	server  string

	state app.State

	// Terminal dimensions
	width  int
	height int

	// Gallery state
	focus       focus
	entryCursor int
	tagCursor   int
	searchInput textinput.Model
	rangeInput  textinput.Model
	rangeErr    string

	// Detail state
	detailKey      string // entry the viewport content belongs to
	detailRendered string
	detailViewport viewport.Model

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// Status message (shown until the next key)
	statusMsg string
	statusErr bool
}

// NewModel returns a root model around s. Init starts the first refresh.
func NewModel(ctx context.Context, f app.Fetcher, s app.State, opts Options) Model {
	search := textinput.New()
	search.Placeholder = "Search the memex..."
	search.Prompt = "/ "
	search.CharLimit = 256
	search.SetValue(s.Filter.Buffer)

	rng := textinput.New()
	rng.Placeholder = "2021-01-01..2021-02-01"
	rng.Prompt = "range: "
	rng.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logging.Log)
	}

	return Model{
		ctx:            ctx,
		fetcher:        f,
		log:            log.WithField("component", "tui"),
		server:         opts.Server,
		state:          s,
		width:          defaultTerminalWidth,
		height:         defaultTerminalHeight,
		searchInput:    search,
		rangeInput:     rng,
		detailViewport: viewport.New(defaultTerminalWidth-8, defaultTerminalHeight-10),
		spinner:        sp,
		help:           help.New(),
		keys:           newKeyMap(),
	}
}

// State returns the controller state the model currently renders.
func (m Model) State() app.State {
	return m.state
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("memex"),
		func() tea.Msg { return app.RequestRefresh{} },
	)
}

// Layout calculation helpers
func (m Model) galleryLayout() (int, int, int) {
	usableWidth := m.width - 8
	leftWidth := int(float64(usableWidth) * leftPaneWidthFraction)
	if leftWidth < minLeftPaneWidth {
		leftWidth = minLeftPaneWidth
	}
	rightWidth := usableWidth - leftWidth - 2
	if rightWidth < minRightPaneWidth {
		rightWidth = minRightPaneWidth
	}
	paneHeight := m.height - 16
	if paneHeight < 5 {
		paneHeight = 5
	}
	return leftWidth, rightWidth, paneHeight
}

func (m Model) detailLayout() (int, int) {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	h := m.height - 10
	if h < 3 {
		h = 3
	}
	return w, h
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.detailLayout()
		m.detailViewport.Width = w
		m.detailViewport.Height = h
		// Re-render the detail for the new width
		m.detailKey = ""
		cmd := m.syncDetail()
		return m, cmd

	case app.Event:
		return m.dispatch(msg)

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case markdownRenderedMsg:
		if msg.target != m.detailKey {
			return m, nil
		}
		m.detailRendered = msg.content
		m.detailViewport.SetContent(m.detailRendered)
		m.detailViewport.GotoTop()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.statusMsg = "Copy failed: " + msg.err.Error()
			m.statusErr = true
		} else {
			m.statusMsg = "Copied " + msg.url
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.statusMsg = ""
		return m.updateKey(msg)
	}

	// Cursor blink and other widget messages
	return m.updateInputs(msg)
}

// dispatch runs ev through the reducer and turns its effects into commands.
func (m Model) dispatch(ev app.Event) (Model, tea.Cmd) {
	prev := m.state
	res := app.Reduce(m.state, ev)
	m.state = res.State

	if m.state.CurrentQuery != prev.CurrentQuery {
		m.log.WithFields(logrus.Fields{
			"from": prev.CurrentQuery,
			"to":   m.state.CurrentQuery,
		}).Info("query changed")
	}
	if m.state.LastError != "" && m.state.LastError != prev.LastError {
		m.log.WithField("error", m.state.LastError).Warn("request failed")
	}

	var cmds []tea.Cmd
	for _, fx := range res.Effects {
		m.log.WithFields(logrus.Fields{
			"handle": fx.Handle.String(),
			"query":  fx.Handle.Query,
		}).Debug("request started")
		cmds = append(cmds, m.fetch(fx))
	}
	if len(res.Effects) > 0 && !prev.Loading() {
		cmds = append(cmds, m.spinner.Tick)
	}

	if len(m.state.Entries) != len(prev.Entries) {
		m.entryCursor = 0
	}
	m.clampCursors()
	cmds = append(cmds, m.syncDetail())

	return m, tea.Batch(cmds...)
}

func (m *Model) clampCursors() {
	if m.entryCursor >= len(m.state.Entries) {
		m.entryCursor = max(len(m.state.Entries)-1, 0)
	}
	if m.tagCursor >= len(m.state.Tags) {
		m.tagCursor = max(len(m.state.Tags)-1, 0)
	}
}

// syncDetail starts rendering the selected entry when the detail view shows
// an entry the viewport does not hold yet.
func (m *Model) syncDetail() tea.Cmd {
	if m.state.View != router.Detail || m.state.Selected == nil {
		return nil
	}
	k := detailKey(*m.state.Selected)
	if k == m.detailKey {
		return nil
	}
	m.detailKey = k
	m.detailRendered = ""
	w, _ := m.detailLayout()
	return m.renderMarkdownCmd(entryMarkdown(*m.state.Selected), w, k)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusSearch:
		return m.updateSearch(msg)
	case focusRange:
		return m.updateRange(msg)
	}

	if v, ok := router.ForAccessKey(msg.String()); ok {
		return m.dispatch(app.ViewSelected{View: v})
	}

	switch m.state.View {
	case router.Gallery:
		return m.updateGallery(msg)
	case router.Detail:
		return m.updateDetail(msg)
	default:
		if key.Matches(msg, m.keys.Back) {
			return m.dispatch(app.ViewSelected{View: router.Gallery})
		}
	}
	return m.dispatch(app.KeyPressed{Key: msg.String()})
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case focusRange:
		m.rangeInput, cmd = m.rangeInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	d := m.state.Resolve()

	var content, helpLine string
	switch d.View {
	case router.Gallery:
		content = m.viewGallery(d)
		helpLine = m.help.ShortHelpView(m.keys.galleryHelp())
		if m.focus == focusSearch || m.focus == focusRange {
			helpLine = m.help.ShortHelpView(m.keys.inputHelp())
		}
	case router.Detail:
		content = m.viewDetail(d)
		helpLine = m.help.ShortHelpView(m.keys.detailHelp())
	default:
		content = m.viewPlaceholder(d)
		helpLine = m.help.ShortHelpView(m.keys.placeholderHelp())
	}

	s := m.viewNavbar(d.View) + "\n"
	s += content + "\n"
	s += m.viewStatus(d)
	s += helpBarStyle.Render(helpLine)

	return appStyle.MaxWidth(m.width).MaxHeight(m.height).Render(s)
}

func (m Model) viewNavbar(active router.View) string {
	items := []string{brandOpenStyle.Render("Open") + brandMemexStyle.Render("Memex") + " "}
	for _, v := range router.All {
		label := fmt.Sprintf("%s %s", v.AccessKey(), v)
		if v == active {
			items = append(items, navActiveStyle.Render(label))
		} else {
			items = append(items, navItemStyle.Render(label))
		}
	}
	return navBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

func (m Model) viewStatus(d router.Descriptor) string {
	var s string
	if d.Loading {
		s += m.spinner.View() + mutedStyle.Render(" Loading...") + "\n"
	}
	if d.Error != "" {
		s += errorStyle.Render("Error: "+d.Error) + "\n"
	}
	if m.statusMsg != "" {
		if m.statusErr {
			s += errorStyle.Render(m.statusMsg) + "\n"
		} else {
			s += successStyle.Render(m.statusMsg) + "\n"
		}
	}
	return s
}

func (m Model) viewPlaceholder(d router.Descriptor) string {
	s := headerStyle.Render(d.Title) + "\n\n"
	s += mutedStyle.Render(d.Placeholder) + "\n"
	if d.View == router.Settings && m.server != "" {
		s += "\n" + controlLabelStyle.Render("server ") + m.server + "\n"
		s += controlLabelStyle.Render("stale  ") + m.state.Options.Policy.String() + "\n"
	}
	return s
}

// --- Commands (async operations) ---

type markdownRenderedMsg struct {
	content string
	target  string // detailKey of the rendered entry
}

type clipboardMsg struct {
	url string
	err error
}

func (m Model) renderMarkdownCmd(content string, width int, target string) tea.Cmd {
	return func() tea.Msg {
		rendered := renderMarkdown(width, content)
		return markdownRenderedMsg{content: rendered, target: target}
	}
}

// fetch performs fx off the update loop; the completion comes back as an
// app.Event.
func (m Model) fetch(fx app.Fetch) tea.Cmd {
	ctx, f := m.ctx, m.fetcher
	return func() tea.Msg {
		return app.Execute(ctx, f, fx)
	}
}

func copyURL(url string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{url: url, err: writeClipboard(url)}
	}
}

func detailKey(e catalog.CacheEntry) string {
	return fmt.Sprintf("%d|%s", e.ID, e.URL)
}

func entryMarkdown(e catalog.CacheEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Label())
	if e.URL != "" && e.URL != e.Label() {
		fmt.Fprintf(&b, "<%s>\n\n", e.URL)
	}
	if !e.Timestamp.IsZero() {
		fmt.Fprintf(&b, "*%s*\n\n", e.Timestamp.Format(query.DateLayout+" 15:04"))
	}
	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = "`" + t + "`"
		}
		b.WriteString(strings.Join(tags, " ") + "\n\n")
	}
	if e.Content != "" {
		b.WriteString("---\n\n")
		b.WriteString(e.Content)
		b.WriteString("\n")
	}
	return b.String()
}
