package app

import (
	"errors"
	"testing"
	"time"

	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/request"
	"github.com/gabrielfornes/memex/internal/router"
)

func step(t *testing.T, s State, ev Event) Result {
	t.Helper()
	return Reduce(s, ev)
}

func effectFor(t *testing.T, res Result, kind request.Kind) Fetch {
	t.Helper()
	for _, fx := range res.Effects {
		if fx.Handle.Kind == kind {
			return fx
		}
	}
	t.Fatalf("no %s fetch among %d effects", kind, len(res.Effects))
	return Fetch{}
}

func TestDefaultConstructionAndFirstRefresh(t *testing.T) {
	s := New(DefaultOptions())
	if s.CurrentQuery != "/all/cache?sort=time&limit=150" {
		t.Fatalf("unexpected default query %q", s.CurrentQuery)
	}

	res := step(t, s, RequestRefresh{})
	if !res.Dirty || len(res.Effects) != 2 {
		t.Fatalf("refresh should start two requests, got %+v", res)
	}
	entries := effectFor(t, res, request.Entries)
	tags := effectFor(t, res, request.Tags)
	if entries.Query.String() != "/all/cache?sort=time&limit=150" {
		t.Fatalf("entries query %q", entries.Query)
	}
	if tags.Query.String() != "/all/tags?min=10" {
		t.Fatalf("tags query %q", tags.Query)
	}

	s = step(t, res.State, TagsReceived{Handle: tags.Handle, Tags: []string{"tag1", "tag2"}}).State
	s = step(t, s, EntriesReceived{Handle: entries.Handle, Entries: []catalog.CacheEntry{}}).State

	if !s.EntriesLoaded || s.Entries == nil || len(s.Entries) != 0 {
		t.Fatalf("expected loaded empty entries, got %#v", s.Entries)
	}
	if len(s.Tags) != 2 || s.Tags[0] != "tag1" || s.Tags[1] != "tag2" {
		t.Fatalf("unexpected tags %v", s.Tags)
	}
	if s.LastError != "" {
		t.Fatalf("unexpected error %q", s.LastError)
	}
	if s.Loading() {
		t.Fatal("no request should remain tracked")
	}
}

func TestTagSelectedQuery(t *testing.T) {
	res := step(t, New(DefaultOptions()), TagSelected{Tag: "foo"})
	if res.State.CurrentQuery != "/all/cache?sort=time&tag=foo&limit=150" {
		t.Fatalf("got %q", res.State.CurrentQuery)
	}
	if len(res.Effects) != 2 {
		t.Fatalf("tag selection should refresh both kinds, got %d effects", len(res.Effects))
	}

	res = step(t, res.State, TagSelected{})
	if res.State.CurrentQuery != "/all/cache?sort=time&limit=150" {
		t.Fatalf("clearing the tag should restore the default query, got %q", res.State.CurrentQuery)
	}
}

func TestSearchFlow(t *testing.T) {
	s := New(DefaultOptions())
	res := step(t, s, SearchTextChanged{Text: "a b"})
	if len(res.Effects) != 0 || res.State.CurrentQuery != s.CurrentQuery {
		t.Fatal("typing must not refresh")
	}

	res = step(t, res.State, SearchSubmitted{})
	if res.State.CurrentQuery != "/search/a%20b" {
		t.Fatalf("got %q", res.State.CurrentQuery)
	}
	if !res.State.Filter.Searching() {
		t.Fatal("expected search mode")
	}
}

func TestSearchKeyPressed(t *testing.T) {
	s := step(t, New(DefaultOptions()), SearchTextChanged{Text: "  golang "}).State

	res := step(t, s, SearchKeyPressed{Key: "g"})
	if len(res.Effects) != 0 || res.State.Filter.Searching() {
		t.Fatal("non-submit keys must be ignored")
	}

	res = step(t, s, SearchKeyPressed{Key: SubmitKey})
	if res.State.CurrentQuery != "/search/golang" {
		t.Fatalf("submit key should search trimmed text, got %q", res.State.CurrentQuery)
	}
}

func TestBlankSearchRevertsToFilterMode(t *testing.T) {
	s := step(t, New(DefaultOptions()), TagSelected{Tag: "go"}).State
	s = step(t, s, SearchTextChanged{Text: "   "}).State
	res := step(t, s, SearchSubmitted{})

	if res.State.Filter.Searching() {
		t.Fatal("blank search must not enter search mode")
	}
	if res.State.CurrentQuery != "/all/cache?sort=time&limit=150" {
		t.Fatalf("got %q", res.State.CurrentQuery)
	}
}

func TestSearchClearsFilterAndTagRevertsToFilter(t *testing.T) {
	r := query.NewRange(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC))

	s := step(t, New(DefaultOptions()), TagSelected{Tag: "go"}).State
	s = step(t, s, DateRangeSelected{Range: r}).State
	if s.CurrentQuery != "/all/cache?sort=time&tag=go&startDate=2021-01-01&endDate=2021-01-31&limit=150" {
		t.Fatalf("tag and range should compose, got %q", s.CurrentQuery)
	}

	s = step(t, s, SearchTextChanged{Text: "compilers"}).State
	s = step(t, s, SearchSubmitted{}).State
	if s.CurrentQuery != "/search/compilers" {
		t.Fatalf("got %q", s.CurrentQuery)
	}

	s = step(t, s, TagSelected{Tag: "rust"}).State
	if s.Filter.Searching() {
		t.Fatal("selecting a tag must leave search mode")
	}
	if s.CurrentQuery != "/all/cache?sort=time&tag=rust&limit=150" {
		t.Fatalf("the earlier range must not come back after a search, got %q", s.CurrentQuery)
	}
	if s.Filter.Buffer != "compilers" {
		t.Fatalf("search buffer should be kept, got %q", s.Filter.Buffer)
	}

	s = step(t, s, SearchSubmitted{}).State
	s = step(t, s, DateRangeSelected{Range: r}).State
	if s.CurrentQuery != "/all/cache?sort=time&startDate=2021-01-01&endDate=2021-01-31&limit=150" {
		t.Fatalf("range after search should drop the old tag, got %q", s.CurrentQuery)
	}
}

func TestSortChanged(t *testing.T) {
	s := step(t, New(DefaultOptions()), TagSelected{Tag: "go"}).State
	res := step(t, s, SortChanged{Key: query.ByURL})
	if res.State.CurrentQuery != "/all/cache?sort=url&tag=go&limit=150" {
		t.Fatalf("got %q", res.State.CurrentQuery)
	}
	if len(res.Effects) != 2 {
		t.Fatal("sort change should refresh")
	}

	s = step(t, res.State, SearchTextChanged{Text: "x"}).State
	s = step(t, s, SearchSubmitted{}).State
	s = step(t, s, SortChanged{Key: query.ByDate}).State
	if s.CurrentQuery != "/search/x" {
		t.Fatalf("sort change keeps search mode, got %q", s.CurrentQuery)
	}
}

func TestErrorsKeepLoadedData(t *testing.T) {
	res := step(t, New(DefaultOptions()), RequestRefresh{})
	eh := effectFor(t, res, request.Entries).Handle
	th := effectFor(t, res, request.Tags).Handle
	s := step(t, res.State, EntriesReceived{Handle: eh, Entries: []catalog.CacheEntry{{URL: "a"}}}).State
	s = step(t, s, TagsReceived{Handle: th, Tags: []string{"go"}}).State

	res = step(t, s, RequestRefresh{})
	eh = effectFor(t, res, request.Entries).Handle
	th = effectFor(t, res, request.Tags).Handle

	tagsErr := &catalog.TransportError{URL: "http://x/all/tags", StatusCode: 502, Err: errors.New("HTTP 502")}
	r := step(t, res.State, TagsReceived{Handle: th, Err: tagsErr})
	if !r.Dirty {
		t.Fatal("an error must be rendered")
	}
	s = r.State
	if s.LastError != tagsErr.Error() {
		t.Fatalf("unexpected error %q", s.LastError)
	}
	if len(s.Tags) != 1 || len(s.Entries) != 1 {
		t.Fatal("errors must not clear loaded data")
	}
	if s.Requests.InFlight(request.Tags) {
		t.Fatal("failed request must clear its handle")
	}
	if !s.Requests.InFlight(request.Entries) {
		t.Fatal("a tags failure must not touch the entries request")
	}

	s = step(t, s, EntriesReceived{Handle: eh, Err: &catalog.DecodeError{URL: "u", Err: errors.New("bad")}}).State
	if len(s.Entries) != 1 {
		t.Fatal("decode failure must keep previous entries")
	}

	s = step(t, s, RequestRefresh{}).State
	if s.LastError != "" {
		t.Fatal("a new refresh clears the error")
	}
}

func TestTagsDirtyOnlyWhenChanged(t *testing.T) {
	res := step(t, New(DefaultOptions()), RequestRefresh{})
	th := effectFor(t, res, request.Tags).Handle
	r := step(t, res.State, TagsReceived{Handle: th, Tags: []string{"a", "b"}})
	if !r.Dirty {
		t.Fatal("first tag list must be rendered")
	}

	res = step(t, r.State, RequestRefresh{})
	th = effectFor(t, res, request.Tags).Handle
	r = step(t, res.State, TagsReceived{Handle: th, Tags: []string{"a", "b"}})
	if r.Dirty {
		t.Fatal("identical tag list should not mark the view dirty")
	}

	res = step(t, r.State, RequestRefresh{})
	th = effectFor(t, res, request.Tags).Handle
	r = step(t, res.State, TagsReceived{Handle: th, Tags: []string{"b", "a"}})
	if !r.Dirty {
		t.Fatal("reordered tag list must be rendered")
	}
}

// Refresh A, refresh B, then A's entries arrive late.
func staleRace(t *testing.T, policy request.Policy) State {
	t.Helper()
	opts := DefaultOptions()
	opts.Policy = policy

	resA := step(t, New(opts), TagSelected{Tag: "a"})
	handleA := effectFor(t, resA, request.Entries).Handle
	resB := step(t, resA.State, TagSelected{Tag: "b"})
	handleB := effectFor(t, resB, request.Entries).Handle

	s := step(t, resB.State, EntriesReceived{Handle: handleB, Entries: []catalog.CacheEntry{{URL: "from-b"}}}).State
	return step(t, s, EntriesReceived{Handle: handleA, Entries: []catalog.CacheEntry{{URL: "from-a"}}}).State
}

func TestStaleResponseLastWriterWins(t *testing.T) {
	s := staleRace(t, request.LastWriterWins)
	if len(s.Entries) != 1 || s.Entries[0].URL != "from-a" {
		t.Fatalf("last-writer-wins should let the late response overwrite, got %+v", s.Entries)
	}
	if s.CurrentQuery != "/all/cache?sort=time&tag=b&limit=150" {
		t.Fatalf("query stays at B, got %q", s.CurrentQuery)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	s := staleRace(t, request.DiscardStale)
	if len(s.Entries) != 1 || s.Entries[0].URL != "from-b" {
		t.Fatalf("B's result must win, got %+v", s.Entries)
	}
}

func TestStaleResponseBeforeLatestDiscarded(t *testing.T) {
	resA := step(t, New(DefaultOptions()), TagSelected{Tag: "a"})
	handleA := effectFor(t, resA, request.Entries).Handle
	resB := step(t, resA.State, TagSelected{Tag: "b"})

	r := step(t, resB.State, EntriesReceived{Handle: handleA, Entries: []catalog.CacheEntry{{URL: "from-a"}}})
	if r.Dirty || r.State.EntriesLoaded {
		t.Fatal("stale result must be dropped")
	}
	if !r.State.Requests.InFlight(request.Entries) {
		t.Fatal("B must still be tracked")
	}
}

func TestEntrySelectionAndViews(t *testing.T) {
	s := New(DefaultOptions())
	s = step(t, s, ViewSelected{View: router.Detail}).State
	d := s.Resolve()
	if !d.Empty || d.Entry != nil {
		t.Fatalf("detail without a selection must be an empty placeholder, got %+v", d)
	}

	entries := []catalog.CacheEntry{{URL: "https://go.dev", Tags: []string{"go"}}}
	res := step(t, s, RequestRefresh{})
	s = step(t, res.State, EntriesReceived{Handle: effectFor(t, res, request.Entries).Handle, Entries: entries}).State
	s = step(t, s, TagSelected{Tag: "go"}).State

	r := step(t, s, EntrySelected{Entry: &entries[0]})
	if !r.Dirty {
		t.Fatal("selection must be rendered")
	}
	s = r.State
	entries[0].URL = "mutated"
	if s.Selected.URL != "https://go.dev" {
		t.Fatal("selected entry must not alias the caller's value")
	}

	for _, v := range router.All {
		s = step(t, s, ViewSelected{View: v}).State
		if s.Selected == nil || s.Filter.ActiveTag() != "go" || len(s.Entries) != 1 {
			t.Fatalf("switching to %s lost state", v)
		}
	}

	s = step(t, s, ViewSelected{View: router.Detail}).State
	if d := s.Resolve(); d.Entry == nil || d.Entry.URL != "https://go.dev" {
		t.Fatalf("detail should show the selection, got %+v", d)
	}

	s = step(t, s, EntrySelected{}).State
	if s.Selected != nil {
		t.Fatal("nil selection must clear")
	}
}

func TestKeyPressedIsNoop(t *testing.T) {
	s := New(DefaultOptions())
	r := step(t, s, KeyPressed{Key: "x"})
	if r.Dirty || len(r.Effects) != 0 || r.State.CurrentQuery != s.CurrentQuery {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestNewWithFilter(t *testing.T) {
	s := NewWithFilter(DefaultOptions(), query.Filter{Mode: query.SearchMode{Text: "go"}})
	if s.CurrentQuery != "/search/go" {
		t.Fatalf("got %q", s.CurrentQuery)
	}
	s = NewWithFilter(Options{Limit: 5, TagMin: 2}, query.Filter{})
	if s.CurrentQuery != "/all/cache?sort=time&limit=5" || s.TagsQuery != "/all/tags?min=2" {
		t.Fatalf("got %q / %q", s.CurrentQuery, s.TagsQuery)
	}
}
