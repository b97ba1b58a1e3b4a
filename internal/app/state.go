package app

import (
	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/request"
	"github.com/gabrielfornes/memex/internal/router"
)

// Options are fixed for the lifetime of a State.
type Options struct {
	Limit  int // result-count cap for entry listings
	TagMin int // minimum tag frequency for the tag listing
	Policy request.Policy
}

// DefaultOptions matches the catalog's usual page: 150 entries, tags used
// at least 10 times, stale completions discarded.
func DefaultOptions() Options {
	return Options{Limit: 150, TagMin: 10, Policy: request.DiscardStale}
}

// State is the whole controller state. Only Reduce produces new states;
// Entries and Tags are shared read-only between copies.
type State struct {
	Entries       []catalog.CacheEntry
	EntriesLoaded bool
	Tags          []string
	TagsLoaded    bool
	Selected      *catalog.CacheEntry

	Filter       query.Filter
	CurrentQuery string
	TagsQuery    string
	LastError    string

	Requests request.Tracker
	View     router.View
	Options  Options
}

// New returns the initial state with the default query. Callers still have
// to dispatch RequestRefresh to start fetching.
func New(opts Options) State {
	return NewWithFilter(opts, query.DefaultFilter())
}

// NewWithFilter is New with a preset filter.
func NewWithFilter(opts Options, f query.Filter) State {
	if f.Mode == nil {
		f.Mode = query.FilterMode{}
	}
	return State{
		Filter:       f,
		CurrentQuery: query.BuildEntriesQuery(f, opts.Limit).String(),
		TagsQuery:    query.BuildTagsQuery(opts.TagMin).String(),
		Requests:     request.Tracker{Policy: opts.Policy},
		View:         router.Gallery,
		Options:      opts,
	}
}

// Loading reports whether any request is still tracked.
func (s State) Loading() bool {
	return s.Requests.Pending()
}

// Snapshot is the read-only view of s handed to presentational code.
func (s State) Snapshot() router.Snapshot {
	return router.Snapshot{
		Entries:   s.Entries,
		Tags:      s.Tags,
		Selected:  s.Selected,
		Filter:    s.Filter,
		LastError: s.LastError,
		Loading:   s.Loading(),
	}
}

// Resolve renders the current view descriptor.
func (s State) Resolve() router.Descriptor {
	return router.Resolve(s.View, s.Snapshot())
}
