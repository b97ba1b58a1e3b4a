package app

import (
	"context"
	"slices"
	"strings"

	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/request"
)

// Fetch is a request the driver must start.
type Fetch struct {
	Handle request.Handle
	Query  query.Descriptor
}

// Result is the outcome of one reduction. Dirty means the rendered view
// changed.
type Result struct {
	State   State
	Effects []Fetch
	Dirty   bool
}

// Reduce applies ev to s. It never blocks and never performs I/O; requests
// are returned as Effects.
func Reduce(s State, ev Event) Result {
	switch ev := ev.(type) {
	case RequestRefresh:
		return refresh(s)

	case EntriesReceived:
		if !s.Requests.Complete(ev.Handle) {
			return Result{State: s}
		}
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
		} else {
			s.Entries = ev.Entries
			s.EntriesLoaded = true
		}
		return Result{State: s, Dirty: true}

	case TagsReceived:
		if !s.Requests.Complete(ev.Handle) {
			return Result{State: s}
		}
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
			return Result{State: s, Dirty: true}
		}
		changed := !s.TagsLoaded || !slices.Equal(s.Tags, ev.Tags)
		s.Tags = ev.Tags
		s.TagsLoaded = true
		return Result{State: s, Dirty: changed}

	case EntrySelected:
		if ev.Entry == nil {
			s.Selected = nil
		} else {
			e := *ev.Entry
			s.Selected = &e
		}
		return Result{State: s, Dirty: true}

	case TagSelected:
		s.Filter.Mode = query.FilterMode{Tag: ev.Tag, Range: s.Filter.DateRange()}
		return refresh(s)

	case DateRangeSelected:
		s.Filter.Mode = query.FilterMode{Tag: s.Filter.ActiveTag(), Range: ev.Range}
		return refresh(s)

	case SortChanged:
		s.Filter.Sort = ev.Key
		return refresh(s)

	case SearchTextChanged:
		s.Filter.Buffer = ev.Text
		return Result{State: s}

	case SearchSubmitted:
		if text := strings.TrimSpace(s.Filter.Buffer); text != "" {
			s.Filter.Mode = query.SearchMode{Text: text}
		} else {
			s.Filter.Mode = query.FilterMode{}
		}
		return refresh(s)

	case SearchKeyPressed:
		if ev.Key == SubmitKey {
			return Reduce(s, SearchSubmitted{})
		}
		return Result{State: s}

	case ViewSelected:
		s.View = ev.View
		return Result{State: s, Dirty: true}

	case KeyPressed:
		return Result{State: s}
	}
	return Result{State: s}
}

func refresh(s State) Result {
	entriesQuery := query.BuildEntriesQuery(s.Filter, s.Options.Limit)
	tagsQuery := query.BuildTagsQuery(s.Options.TagMin)
	s.CurrentQuery = entriesQuery.String()
	s.TagsQuery = tagsQuery.String()
	s.LastError = ""

	effects := []Fetch{
		{Handle: s.Requests.Start(request.Entries, s.CurrentQuery), Query: entriesQuery},
		{Handle: s.Requests.Start(request.Tags, s.TagsQuery), Query: tagsQuery},
	}
	return Result{State: s, Effects: effects, Dirty: true}
}

// Fetcher is the catalog service as the controller sees it.
type Fetcher interface {
	ListEntries(ctx context.Context, d query.Descriptor) ([]catalog.CacheEntry, error)
	ListTags(ctx context.Context, d query.Descriptor) ([]string, error)
}

// Execute performs fx and returns its completion event. It is meant to run
// off the event queue.
func Execute(ctx context.Context, f Fetcher, fx Fetch) Event {
	if fx.Handle.Kind == request.Tags {
		tags, err := f.ListTags(ctx, fx.Query)
		return TagsReceived{Handle: fx.Handle, Tags: tags, Err: err}
	}
	entries, err := f.ListEntries(ctx, fx.Query)
	return EntriesReceived{Handle: fx.Handle, Entries: entries, Err: err}
}
