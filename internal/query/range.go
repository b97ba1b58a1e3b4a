package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// rangeSeparators are tried in order; ".." is the canonical form.
var rangeSeparators = []string{"..", " to ", " - "}

// ParseRange parses "start..end" into a DateRange. Either bound may use any
// layout dateparse understands. A single date yields a one-day range.
// Blank input returns nil, nil. Reversed bounds are swapped.
func ParseRange(s string) (*DateRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	startText, endText := s, s
	for _, sep := range rangeSeparators {
		if before, after, ok := strings.Cut(s, sep); ok {
			startText, endText = strings.TrimSpace(before), strings.TrimSpace(after)
			break
		}
	}

	start, err := ParseDate(startText)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := ParseDate(endText)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	return NewRange(start, end), nil
}

// NewRange truncates both bounds to calendar dates, ordered.
func NewRange(start, end time.Time) *DateRange {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		start, end = end, start
	}
	return &DateRange{Start: start, End: end}
}

// ParseDate parses a single date in any layout dateparse accepts.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse %q: %w", s, err)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
