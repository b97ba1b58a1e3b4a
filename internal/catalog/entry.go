package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// CacheEntry is one cached page or note held by the catalog service.
// Entries are shared read-only once decoded.
type CacheEntry struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp Timestamp `json:"datetime"`
	Tags      []string  `json:"tags,omitempty"`
}

// Label is what the entry card shows as a heading.
func (e CacheEntry) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return e.URL
}

// HasTag reports whether tag is attached to the entry.
func (e CacheEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Timestamp decodes the many date layouts the service has emitted over
// time: naive ISO datetimes, RFC 3339, space separated, epoch seconds or
// milliseconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts a string in any dateparse layout, an epoch number,
// or null. Epoch numbers of 1e11 and above are milliseconds.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if b[0] != '"' {
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", b, err)
		}
		if math.Abs(n) >= 1e11 {
			t.Time = time.UnixMilli(int64(n)).UTC()
		} else {
			t.Time = time.Unix(int64(n), 0).UTC()
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON writes RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
