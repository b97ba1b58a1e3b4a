package query

import (
	"strings"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildEntriesQueryDefault(t *testing.T) {
	got := BuildEntriesQuery(DefaultFilter(), 150).String()
	if got != "/all/cache?sort=time&limit=150" {
		t.Fatalf("unexpected default query %q", got)
	}
}

func TestBuildEntriesQueryFilterMode(t *testing.T) {
	r := NewRange(day(2021, 3, 1), day(2021, 3, 31))
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name:   "tag",
			filter: Filter{Mode: FilterMode{Tag: "foo"}},
			want:   "/all/cache?sort=time&tag=foo&limit=150",
		},
		{
			name:   "range",
			filter: Filter{Mode: FilterMode{Range: r}},
			want:   "/all/cache?sort=time&startDate=2021-03-01&endDate=2021-03-31&limit=150",
		},
		{
			name:   "tag and range by url",
			filter: Filter{Mode: FilterMode{Tag: "go", Range: r}, Sort: ByURL},
			want:   "/all/cache?sort=url&tag=go&startDate=2021-03-01&endDate=2021-03-31&limit=150",
		},
		{
			name:   "tag needing escape",
			filter: Filter{Mode: FilterMode{Tag: "c++ tips"}},
			want:   "/all/cache?sort=time&tag=c%2B%2B%20tips&limit=150",
		},
		{
			name:   "buffer without submission is ignored",
			filter: Filter{Mode: FilterMode{}, Buffer: "pending text"},
			want:   "/all/cache?sort=time&limit=150",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildEntriesQuery(tt.filter, 150).String()
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if strings.Contains(got, searchPath) {
				t.Fatalf("filter query must not hit the search endpoint: %q", got)
			}
		})
	}
}

func TestBuildEntriesQuerySearchMode(t *testing.T) {
	f := Filter{Mode: SearchMode{Text: "  a b  "}, Sort: ByURL}
	got := BuildEntriesQuery(f, 150).String()
	if got != "/search/a%20b" {
		t.Fatalf("got %q", got)
	}

	f.Mode = SearchMode{Text: "rust/go & more"}
	got = BuildEntriesQuery(f, 150).String()
	if got != "/search/rust%2Fgo%20%26%20more" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildEntriesQueryBlankSearchFallsBack(t *testing.T) {
	got := BuildEntriesQuery(Filter{Mode: SearchMode{Text: "   "}}, 150).String()
	if got != "/all/cache?sort=time&limit=150" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildEntriesQueryIsPure(t *testing.T) {
	f := Filter{Mode: FilterMode{Tag: "x", Range: NewRange(day(2020, 1, 1), day(2020, 2, 1))}}
	a := BuildEntriesQuery(f, 10).String()
	b := BuildEntriesQuery(f, 10).String()
	if a != b {
		t.Fatalf("same filter produced %q and %q", a, b)
	}
}

func TestBuildTagsQuery(t *testing.T) {
	if got := BuildTagsQuery(10).String(); got != "/all/tags?min=10" {
		t.Fatalf("got %q", got)
	}
	if got := BuildTagsQuery(0).String(); got != "/all/tags" {
		t.Fatalf("got %q", got)
	}
}

func TestEscape(t *testing.T) {
	if got := Escape("AZaz09-_.~"); got != "AZaz09-_.~" {
		t.Fatalf("unreserved characters changed: %q", got)
	}
	if got := Escape("é"); got != "%C3%A9" {
		t.Fatalf("got %q", got)
	}
}

func TestFilterAccessors(t *testing.T) {
	r := NewRange(day(2022, 5, 1), day(2022, 5, 2))
	f := Filter{Mode: FilterMode{Tag: "t", Range: r}}
	if f.ActiveTag() != "t" || f.DateRange() != r || f.Searching() {
		t.Fatalf("unexpected accessors for filter mode: %+v", f)
	}
	f.Mode = SearchMode{Text: "q"}
	if f.ActiveTag() != "" || f.DateRange() != nil || !f.Searching() || f.SearchText() != "q" {
		t.Fatalf("unexpected accessors for search mode: %+v", f)
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{"": ByDate, "time": ByDate, "Date": ByDate, "url": ByURL} {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Fatalf("ParseSortKey(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSortKey("size"); err == nil {
		t.Fatal("expected error for unknown sort key")
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2021-03-31..2021-03-01")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r.String() != "2021-03-01..2021-03-31" {
		t.Fatalf("bounds not ordered: %s", r)
	}

	r, err = ParseRange("2021-03-04")
	if err != nil {
		t.Fatalf("ParseRange single: %v", err)
	}
	if !r.Start.Equal(r.End) {
		t.Fatalf("single date should give one-day range, got %s", r)
	}

	r, err = ParseRange("2021-01-02 to 2021-02-03T10:00:00")
	if err != nil {
		t.Fatalf("ParseRange with 'to': %v", err)
	}
	if r.String() != "2021-01-02..2021-02-03" {
		t.Fatalf("got %s", r)
	}

	r, err = ParseRange("   ")
	if err != nil || r != nil {
		t.Fatalf("blank input should clear the range, got %v, %v", r, err)
	}

	if _, err := ParseRange("banana..2021-01-01"); err == nil {
		t.Fatal("expected error for unparseable bound")
	}
}

func TestDateRangeEqual(t *testing.T) {
	a := NewRange(day(2021, 1, 1), day(2021, 1, 2))
	b := NewRange(day(2021, 1, 1).Add(5*time.Hour), day(2021, 1, 2))
	var none *DateRange
	if !a.Equal(b) {
		t.Fatal("ranges on the same calendar days should be equal")
	}
	if a.Equal(none) || !none.Equal(nil) {
		t.Fatal("nil comparison is wrong")
	}
}
