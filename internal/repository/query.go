package repository

import (
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// ProductFilter narrows a product listing.
type ProductFilter struct {
	// Category is matched exactly; empty means all categories.
	Category string
	Page     Page
}

// DateRange is a half-open [Start, End) window on created_at. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether the window is unbounded on both sides.
func (d DateRange) IsZero() bool {
	return d.Start == nil && d.End == nil
}

// ParseDateRange parses optional RFC 3339 or YYYY-MM-DD bounds. A date-only end
// covers that whole day, so the bound moves to the following midnight.
func ParseDateRange(start, end string) (DateRange, error) {
	var window DateRange
	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid startDate %q: %w", start, err)
		}
		window.Start = &t
	}
	if end != "" {
		t, dateOnly, err := parseDate(end)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid endDate %q: %w", end, err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		window.End = &t
	}
	if window.Start != nil && window.End != nil && !window.Start.Before(*window.End) {
		return DateRange{}, fmt.Errorf("startDate %q must be before endDate %q", start, end)
	}
	return window, nil
}

func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(dateOnlyLayout, value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
