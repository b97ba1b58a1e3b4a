package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SortKey selects the ordering of the filtered entry listing.
type SortKey int

const (
	ByDate SortKey = iota
	ByURL
)

// Param returns the value the catalog expects for the sort parameter.
func (k SortKey) Param() string {
	if k == ByURL {
		return "url"
	}
	return "time"
}

func (k SortKey) String() string {
	if k == ByURL {
		return "url"
	}
	return "date"
}

// ParseSortKey accepts "time", "date" or "url".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "time", "date":
		return ByDate, nil
	case "url":
		return ByURL, nil
	default:
		return ByDate, fmt.Errorf("unknown sort key %q", s)
	}
}

// Mode is the authoritative query form: FilterMode or SearchMode.
type Mode interface {
	isMode()
}

// FilterMode queries the list endpoint narrowed by an optional tag and date range.
type FilterMode struct {
	Tag   string // "" means no tag
	Range *DateRange
}

// SearchMode queries the free-text search endpoint.
type SearchMode struct {
	Text string
}

func (FilterMode) isMode() {}
func (SearchMode) isMode() {}

// Filter is the complete filter state. Buffer holds the search input as
// typed; it only takes effect once a search is submitted.
type Filter struct {
	Mode   Mode
	Sort   SortKey
	Buffer string
}

// DefaultFilter lists everything, newest first.
func DefaultFilter() Filter {
	return Filter{Mode: FilterMode{}, Sort: ByDate}
}

// ActiveTag returns the selected tag in filter mode.
func (f Filter) ActiveTag() string {
	if fm, ok := f.Mode.(FilterMode); ok {
		return fm.Tag
	}
	return ""
}

// DateRange returns the selected range in filter mode, or nil.
func (f Filter) DateRange() *DateRange {
	if fm, ok := f.Mode.(FilterMode); ok {
		return fm.Range
	}
	return nil
}

// Searching reports whether a search has been submitted.
func (f Filter) Searching() bool {
	_, ok := f.Mode.(SearchMode)
	return ok
}

// SearchText returns the submitted search text, if any.
func (f Filter) SearchText() string {
	if sm, ok := f.Mode.(SearchMode); ok {
		return sm.Text
	}
	return ""
}

// Param is one query-string pair.
type Param struct {
	Key   string
	Value string
}

// Descriptor is a catalog request path with ordered query parameters.
type Descriptor struct {
	Path   string
	Params []Param
}

// String renders the descriptor as path?k=v&k=v, keeping parameter order.
func (d Descriptor) String() string {
	if len(d.Params) == 0 {
		return d.Path
	}
	var b strings.Builder
	b.WriteString(d.Path)
	for i, p := range d.Params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(Escape(p.Key))
		b.WriteByte('=')
		b.WriteString(Escape(p.Value))
	}
	return b.String()
}

// Get returns the first value for key.
func (d Descriptor) Get(key string) (string, bool) {
	for _, p := range d.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

const (
	entriesPath = "/all/cache"
	tagsPath    = "/all/tags"
	searchPath  = "/search/"
)

// BuildEntriesQuery turns the filter into the entries request. A submitted,
// non-blank search wins over tag, date and sort.
func BuildEntriesQuery(f Filter, limit int) Descriptor {
	if sm, ok := f.Mode.(SearchMode); ok {
		if text := strings.TrimSpace(sm.Text); text != "" {
			return Descriptor{Path: searchPath + Escape(text)}
		}
	}

	d := Descriptor{Path: entriesPath}
	d.Params = append(d.Params, Param{"sort", f.Sort.Param()})
	if fm, ok := f.Mode.(FilterMode); ok {
		if fm.Tag != "" {
			d.Params = append(d.Params, Param{"tag", fm.Tag})
		}
		if fm.Range != nil {
			d.Params = append(d.Params,
				Param{"startDate", fm.Range.Start.Format(DateLayout)},
				Param{"endDate", fm.Range.End.Format(DateLayout)},
			)
		}
	}
	if limit > 0 {
		d.Params = append(d.Params, Param{"limit", strconv.Itoa(limit)})
	}
	return d
}

// BuildTagsQuery returns the tag-frequency listing request.
func BuildTagsQuery(minFrequency int) Descriptor {
	d := Descriptor{Path: tagsPath}
	if minFrequency > 0 {
		d.Params = append(d.Params, Param{"min", strconv.Itoa(minFrequency)})
	}
	return d
}

// Escape percent-encodes every byte outside the unreserved set
// A-Z a-z 0-9 - _ . ~
func Escape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// DateLayout is the catalog's calendar date format.
const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// Equal compares calendar dates only.
func (r *DateRange) Equal(o *DateRange) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Start.Format(DateLayout) == o.Start.Format(DateLayout) &&
		r.End.Format(DateLayout) == o.End.Format(DateLayout)
}
