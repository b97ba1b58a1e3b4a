package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Clear    key.Binding
	Focus    key.Binding
	Search   key.Binding
	Range    key.Binding
	Sort     key.Binding
	Refresh  key.Binding
	Unselect key.Binding
	Copy     key.Binding
	Back     key.Binding
	Views    key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Clear:    key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "clear tag")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "entries/tags")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Range:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "date range")),
		Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r", "R"), key.WithHelp("R", "refresh")),
		Unselect: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unselect")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("b", "back")),
		Views:    key.NewBinding(key.WithKeys("g", "a", "d", "s", "q", ","), key.WithHelp("g/a/d/s/q/,", "views")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) galleryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Focus, k.Search, k.Range, k.Sort, k.Clear, k.Refresh, k.Views, k.Quit}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Copy, k.Back, k.Views, k.Quit}
}

func (k keyMap) placeholderHelp() []key.Binding {
	return []key.Binding{k.Back, k.Views, k.Quit}
}

func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
