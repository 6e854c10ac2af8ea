package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOption selects one of the fixed task orderings.
type SortOption string

const (
	SortCreatedDesc SortOption = "created-desc"
	SortCreatedAsc  SortOption = "created-asc"
	SortTitleAsc    SortOption = "title-asc"
	SortTitleDesc   SortOption = "title-desc"
	SortStatus      SortOption = "status"
)

// SortOptions lists all valid sort options.
var SortOptions = []SortOption{SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc, SortStatus}

// StatusAll disables status filtering.
const StatusAll = "all"

var (
	// ErrInvalidSort is returned for an unknown sort option.
	ErrInvalidSort = errors.New("invalid sort option")

	// ErrInvalidDate is returned when a date bound cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)

// ParseSortOption parses a sort option name.
func ParseSortOption(s string) (SortOption, error) {
	v := SortOption(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortOptions, v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSort, s)
}

// ParseStatusFilter parses a status filter value: a status or "all".
func ParseStatusFilter(s string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == StatusAll {
		return StatusAll, nil
	}
	st, err := ParseStatus(v)
	if err != nil {
		return "", err
	}
	return string(st), nil
}

// DateRange bounds CreatedAt. Both ends are inclusive and optional.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// FilterOptions is the filter and sort configuration of the task view.
type FilterOptions struct {
	Status    string     `json:"status,omitempty"`
	Search    string     `json:"search,omitempty"`
	SortBy    SortOption `json:"sortBy,omitempty"`
	DateRange DateRange  `json:"dateRange"`
}

// DefaultFilters returns the initial filter configuration.
func DefaultFilters() FilterOptions {
	return FilterOptions{
		Status: StatusAll,
		SortBy: SortCreatedDesc,
	}
}

// Match reports whether t passes the status, search and date predicates.
func (o FilterOptions) Match(t Task) bool {
	if o.Status != "" && o.Status != StatusAll && string(t.Status) != o.Status {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(o.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return o.DateRange.Contains(t.CreatedAt)
}

// Apply returns the tasks matching o, ordered by o.SortBy.
// The input slice is not modified.
func Apply(tasks []Task, o FilterOptions) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if o.Match(t) {
			out = append(out, t)
		}
	}
	Sort(out, o.SortBy)
	return out
}

// Sort orders tasks in place. The sort is stable; an empty option keeps order.
func Sort(tasks []Task, by SortOption) {
	cmp := comparator(by)
	if cmp == nil {
		return
	}
	slices.SortStableFunc(tasks, cmp)
}

func comparator(by SortOption) func(a, b Task) int {
	switch by {
	case SortCreatedDesc:
		return func(a, b Task) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortCreatedAsc:
		return func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortTitleAsc:
		c := collate.New(language.Und)
		return func(a, b Task) int { return c.CompareString(a.Title, b.Title) }
	case SortTitleDesc:
		c := collate.New(language.Und)
		return func(a, b Task) int { return c.CompareString(b.Title, a.Title) }
	case SortStatus:
		return func(a, b Task) int { return a.Status.Ordinal() - b.Status.Ordinal() }
	default:
		return nil
	}
}

// ParseDate parses a date bound given as YYYY-MM-DD or RFC 3339.
// A date-only value is the start of that day in UTC, or the last millisecond
// of that day when endOfDay is set.
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Millisecond), nil
		}
		return d, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s (use YYYY-MM-DD or RFC 3339)", ErrInvalidDate, s)
}
