package output

import (
	"bytes"
	"testing"
	"time"

	"tasker/internal/task"
)

func TestIDWidth(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{"empty", nil, ShortIDLen},
		{"short ids", []string{"1", "2"}, ShortIDLen},
		{"distinct at 8", []string{"4f1c2a7e-3b8d", "8a3e5d21-6c4f"}, 8},
		{"shared prefix", []string{"abcdefgh-1", "abcdefgh-2"}, 10},
		{"fake ids", []string{"task-0001", "task-0002"}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tasks []task.Task
			for _, id := range tt.ids {
				tasks = append(tasks, task.Task{ID: id})
			}
			if got := IDWidth(tasks); got != tt.want {
				t.Errorf("IDWidth(%v) = %d, want %d", tt.ids, got, tt.want)
			}
		})
	}
}

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	FormatTask(&buf, 8, task.Task{ID: "4f1c2a7e-3b8d", Title: "Line one\nline two", Status: task.StatusInProgress})
	want := "4f1c2a7e  in-progress  Line one line two\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	FormatTask(&buf, 9, task.Task{ID: "task-0001", Title: "  ", Status: task.StatusPending})
	want = "task-0001  pending      (untitled)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestFormatTaskDetails(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	FormatTaskDetails(&buf, task.Task{
		ID:        "task-0001",
		Title:     "Write docs",
		Status:    task.StatusCompleted,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	})
	want := "ID:          task-0001\n" +
		"Title:       Write docs\n" +
		"Status:      completed\n" +
		"Description: (none)\n" +
		"Created:     2024-01-15 10:30:00Z\n" +
		"Updated:     2024-01-15 11:30:00Z\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFormatFilters(t *testing.T) {
	var buf bytes.Buffer
	FormatFilters(&buf, task.DefaultFilters())
	want := "status: all\nsortBy: created-desc\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
