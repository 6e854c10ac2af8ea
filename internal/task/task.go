// Package task defines the task model and the filter/sort view over a task list.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists all valid statuses in sort order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

var (
	// ErrTitleRequired is returned when a title is empty after trimming.
	ErrTitleRequired = errors.New("title required")

	// ErrInvalidStatus is returned for a status outside the fixed set.
	ErrInvalidStatus = errors.New("invalid status")
)

// ParseStatus parses a status name (case-insensitive, trimmed).
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if v == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
}

// Ordinal returns the position of s in the status sort order.
// Unknown statuses sort last.
func (s Status) Ordinal() int {
	for i, st := range Statuses {
		if s == st {
			return i
		}
	}
	return len(Statuses)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.Ordinal() < len(Statuses)
}

// Task is a titled work item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WireTimeLayout is the JSON form of task timestamps: UTC with milliseconds.
const WireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON writes timestamps in WireTimeLayout so a zero fraction still
// carries ".000".
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{
		plain:     plain(t),
		CreatedAt: t.CreatedAt.UTC().Format(WireTimeLayout),
		UpdatedAt: t.UpdatedAt.UTC().Format(WireTimeLayout),
	})
}

// FormData is the input for creating a task.
type FormData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
}

// Normalize trims fields, defaults the status to pending and validates.
func (f FormData) Normalize() (FormData, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Title == "" {
		return f, ErrTitleRequired
	}
	if f.Status == "" {
		f.Status = StatusPending
	}
	if !f.Status.Valid() {
		return f, fmt.Errorf("%w: %s", ErrInvalidStatus, f.Status)
	}
	return f, nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Normalize trims set fields and validates them.
func (p Patch) Normalize() (Patch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, ErrTitleRequired
		}
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.Status != nil && !p.Status.Valid() {
		return p, fmt.Errorf("%w: %s", ErrInvalidStatus, *p.Status)
	}
	return p, nil
}

// Apply returns t with the patch applied and UpdatedAt re-stamped to now.
// UpdatedAt never moves backwards and never precedes CreatedAt.
func (p Patch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = Latest(now, t.UpdatedAt, t.CreatedAt)
	return t
}

// Latest returns the latest of the given times.
func Latest(times ...time.Time) time.Time {
	var out time.Time
	for _, tm := range times {
		if tm.After(out) {
			out = tm
		}
	}
	return out
}

// Stamp normalizes a timestamp to the persisted precision (UTC, milliseconds).
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
