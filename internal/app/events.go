package app

import (
	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
	"github.com/gabrielfornes/memex/internal/request"
	"github.com/gabrielfornes/memex/internal/router"
)

// SubmitKey submits the search buffer when pressed in the search input.
const SubmitKey = "enter"

// Event is anything Reduce accepts.
type Event interface {
	event()
}

// RequestRefresh rebuilds both queries from the filter and starts both
// requests.
type RequestRefresh struct{}

// EntriesReceived completes an entries request.
type EntriesReceived struct {
	Handle  request.Handle
	Entries []catalog.CacheEntry
	Err     error
}

// TagsReceived completes a tags request.
type TagsReceived struct {
	Handle request.Handle
	Tags   []string
	Err    error
}

// EntrySelected selects an entry for the detail view; nil clears it.
type EntrySelected struct {
	Entry *catalog.CacheEntry
}

// TagSelected filters by tag; "" clears the tag.
type TagSelected struct {
	Tag string
}

// DateRangeSelected filters by date range; nil clears it.
type DateRangeSelected struct {
	Range *query.DateRange
}

type SortChanged struct {
	Key query.SortKey
}

// SearchTextChanged updates the search buffer without querying.
type SearchTextChanged struct {
	Text string
}

type SearchSubmitted struct{}

// SearchKeyPressed is a key typed into the search input.
type SearchKeyPressed struct {
	Key string
}

type ViewSelected struct {
	View router.View
}

// KeyPressed is a key that reached the root without being handled.
type KeyPressed struct {
	Key string
}

func (RequestRefresh) event()    {}
func (EntriesReceived) event()   {}
func (TagsReceived) event()      {}
func (EntrySelected) event()     {}
func (TagSelected) event()       {}
func (DateRangeSelected) event() {}
func (SortChanged) event()       {}
func (SearchTextChanged) event() {}
func (SearchSubmitted) event()   {}
func (SearchKeyPressed) event()  {}
func (ViewSelected) event()      {}
func (KeyPressed) event()        {}
