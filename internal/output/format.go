// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tasker/internal/persist"
	"tasker/internal/task"
)

const (
	// ShortIDLen is the preferred length of displayed task ids.
	ShortIDLen = 8

	// TimeLayout is used for timestamps in details output.
	TimeLayout = "2006-01-02 15:04:05Z07:00"
)

// IDWidth returns the shortest id length, at least ShortIDLen, at which every
// id in tasks is distinct. Pass the full task list, not a filtered view, so
// the printed prefixes resolve uniquely.
func IDWidth(tasks []task.Task) int {
	longest := 0
	for _, t := range tasks {
		longest = max(longest, len(t.ID))
	}
	for n := ShortIDLen; n < longest; n++ {
		seen := make(map[string]bool, len(tasks))
		unique := true
		for _, t := range tasks {
			p := prefix(t.ID, n)
			if seen[p] {
				unique = false
				break
			}
			seen[p] = true
		}
		if unique {
			return n
		}
	}
	return max(longest, ShortIDLen)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// FormatTask formats a task line.
// Format: "{ID:<w}  {STATUS:<11}  {TITLE}\n"
func FormatTask(w io.Writer, width int, t task.Task) {
	fmt.Fprintf(w, "%-*s  %-11s  %s\n", width, prefix(t.ID, width), t.Status, normalizeTitle(t.Title))
}

// FormatTasks formats every task in view with ids shortened against all.
func FormatTasks(w io.Writer, all, view []task.Task) {
	width := IDWidth(all)
	for _, t := range view {
		FormatTask(w, width, t)
	}
}

// FormatTaskDetails prints every field of a task.
func FormatTaskDetails(w io.Writer, t task.Task) {
	desc := t.Description
	if strings.TrimSpace(desc) == "" {
		desc = "(none)"
	}
	fmt.Fprintf(w, "ID:          %s\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(t.Title))
	fmt.Fprintf(w, "Status:      %s\n", t.Status)
	fmt.Fprintf(w, "Description: %s\n", desc)
	fmt.Fprintf(w, "Created:     %s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(w, "Updated:     %s\n", formatTime(t.UpdatedAt))
}

// FormatFilters prints the filter configuration. Empty fields are omitted.
func FormatFilters(w io.Writer, f task.FilterOptions) {
	fmt.Fprintf(w, "status: %s\n", f.Status)
	fmt.Fprintf(w, "sortBy: %s\n", f.SortBy)
	if f.Search != "" {
		fmt.Fprintf(w, "search: %s\n", f.Search)
	}
	if f.DateRange.Start != nil {
		fmt.Fprintf(w, "from:   %s\n", formatTime(*f.DateRange.Start))
	}
	if f.DateRange.End != nil {
		fmt.Fprintf(w, "to:     %s\n", formatTime(*f.DateRange.End))
	}
}

// ThemeName returns "dark" or "light".
func ThemeName(p persist.Preferences) string {
	if p.DarkMode {
		return "dark"
	}
	return "light"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimeLayout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
