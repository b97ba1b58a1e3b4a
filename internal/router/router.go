package router

import (
	"strings"

	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
)

// View is one of the top-level panes.
type View int

const (
	Gallery View = iota
	AddNote
	Detail
	Space
	Queue
	Settings
)

// All lists the views in navbar order.
var All = []View{Gallery, AddNote, Detail, Space, Queue, Settings}

var viewNames = map[View]string{
	Gallery:  "Gallery",
	AddNote:  "Create",
	Detail:   "Detail",
	Space:    "Space",
	Queue:    "Queue",
	Settings: "Settings",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return viewNames[Gallery]
}

// AccessKey is the navbar key that switches to the view.
func (v View) AccessKey() string {
	switch v {
	case AddNote:
		return "a"
	case Detail:
		return "d"
	case Space:
		return "s"
	case Queue:
		return "q"
	case Settings:
		return ","
	default:
		return "g"
	}
}

// Parse maps a view name (case-insensitive, "add"/"create" for AddNote)
// to a View. Unknown names fall back to Gallery.
func Parse(name string) (View, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gallery", "":
		return Gallery, true
	case "addnote", "add", "create":
		return AddNote, true
	case "detail":
		return Detail, true
	case "space":
		return Space, true
	case "queue":
		return Queue, true
	case "settings":
		return Settings, true
	}
	return Gallery, false
}

// ForAccessKey returns the view bound to key.
func ForAccessKey(key string) (View, bool) {
	for _, v := range All {
		if v.AccessKey() == key {
			return v, true
		}
	}
	return Gallery, false
}

// Snapshot is the read-only slice of controller state a view needs.
type Snapshot struct {
	Entries   []catalog.CacheEntry
	Tags      []string
	Selected  *catalog.CacheEntry
	Filter    query.Filter
	LastError string
	Loading   bool
}

// Descriptor is everything a presentational component receives.
type Descriptor struct {
	View  View
	Title string

	// Gallery
	Entries   []catalog.CacheEntry
	Tags      []string
	ActiveTag string
	Range     *query.DateRange
	Sort      query.SortKey
	Search    string
	Searching bool

	// Detail
	Entry *catalog.CacheEntry

	Empty       bool
	Placeholder string
	Error       string
	Loading     bool
}

// Resolve maps a view plus a state snapshot to what should be rendered.
// It never fails: a view without data resolves to a placeholder.
func Resolve(v View, s Snapshot) Descriptor {
	d := Descriptor{View: v, Title: v.String(), Error: s.LastError, Loading: s.Loading}

	switch v {
	case Gallery:
		d.Entries = s.Entries
		d.Tags = s.Tags
		d.ActiveTag = s.Filter.ActiveTag()
		d.Range = s.Filter.DateRange()
		d.Sort = s.Filter.Sort
		d.Search = s.Filter.Buffer
		d.Searching = s.Filter.Searching()
		if len(s.Entries) == 0 {
			d.Empty = true
			d.Placeholder = "No entries"
			if s.Loading {
				d.Placeholder = "Loading entries..."
			}
		}
	case Detail:
		if s.Selected == nil {
			d.Empty = true
			d.Placeholder = "No entry selected. Pick one in the gallery."
			return d
		}
		d.Entry = s.Selected
		d.Title = s.Selected.Label()
	case AddNote:
		d.Empty = true
		d.Placeholder = "Note creation happens on the catalog service."
	default:
		d.Empty = true
		d.Placeholder = v.String() + " is not available yet."
	}
	return d
}
