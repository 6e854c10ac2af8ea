package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasker/internal/service"
	"tasker/internal/task"
)

// fakeAPI is a minimal in-memory Google Tasks API for the default list.
type fakeAPI struct {
	mu      sync.Mutex
	items   []*tasks.Task
	nextID  int
	status  int // if non-zero, every request fails with this code
	patches []map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"failed"}}`, f.status)
		return
	}

	const prefix = "/tasks/v1/lists/@default/tasks"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		writeJSON(w, &tasks.Tasks{Items: f.items})
	case id == "" && r.Method == http.MethodPost:
		var t tasks.Task
		_ = json.NewDecoder(r.Body).Decode(&t)
		f.nextID++
		t.Id = fmt.Sprintf("g%d", f.nextID)
		t.Updated = "2024-01-15T10:30:00.000Z"
		f.items = append(f.items, &t)
		writeJSON(w, &t)
	default:
		i := f.find(id)
		if i < 0 {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"not found"}}`)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, f.items[i])
		case http.MethodPatch:
			var raw map[string]any
			_ = json.NewDecoder(r.Body).Decode(&raw)
			f.patches = append(f.patches, raw)
			t := f.items[i]
			if v, ok := raw["title"].(string); ok {
				t.Title = v
			}
			if v, ok := raw["notes"].(string); ok {
				t.Notes = v
			}
			if v, ok := raw["status"].(string); ok {
				t.Status = v
			}
			t.Updated = "2024-01-15T11:00:00.000Z"
			writeJSON(w, t)
		case http.MethodDelete:
			f.items = append(f.items[:i], f.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (f *fakeAPI) find(id string) int {
	for i, t := range f.items {
		if t.Id == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestNotesEncoding(t *testing.T) {
	tests := []struct {
		status task.Status
		desc   string
		notes  string
	}{
		{task.StatusPending, "", ""},
		{task.StatusPending, "buy oat milk", "buy oat milk"},
		{task.StatusInProgress, "", "[in-progress]"},
		{task.StatusInProgress, "halfway", "[in-progress]\nhalfway"},
	}
	for _, tt := range tests {
		if got := encodeNotes(tt.status, tt.desc); got != tt.notes {
			t.Errorf("encodeNotes(%s, %q) = %q, want %q", tt.status, tt.desc, got, tt.notes)
		}
		status, desc := decodeNotes(tt.notes)
		if status != tt.status || desc != tt.desc {
			t.Errorf("decodeNotes(%q) = %s, %q", tt.notes, status, desc)
		}
	}
}

func TestFromAPI(t *testing.T) {
	got := fromAPI(&tasks.Task{
		Id:      "g1",
		Title:   "Ship it",
		Notes:   "[in-progress]\nalmost",
		Status:  "needsAction",
		Updated: "2024-01-15T10:30:00.123Z",
	})
	if got.ID != "g1" || got.Status != task.StatusInProgress || got.Description != "almost" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("unexpected timestamps %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	done := fromAPI(&tasks.Task{Id: "g2", Title: "Done", Notes: "[in-progress]", Status: "completed"})
	if done.Status != task.StatusCompleted {
		t.Errorf("completed status must win over notes, got %s", done.Status)
	}
}

func TestClient_CRUD(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, task.FormData{Title: "Write tests", Description: "all of them", Status: task.StatusInProgress})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "g1" || created.Status != task.StatusInProgress || created.Description != "all of them" {
		t.Errorf("unexpected created task %+v", created)
	}
	if api.items[0].Notes != "[in-progress]\nall of them" || api.items[0].Status != "needsAction" {
		t.Errorf("unexpected stored task %+v", api.items[0])
	}

	list, err := c.ListTasks(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d tasks)", err, len(list))
	}

	status := task.StatusPending
	updated, err := c.UpdateTask(ctx, "g1", task.Patch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != task.StatusPending || updated.Description != "all of them" || updated.Title != "Write tests" {
		t.Errorf("unexpected updated task %+v", updated)
	}
	if api.items[0].Notes != "all of them" {
		t.Errorf("expected marker removed from notes, got %q", api.items[0].Notes)
	}

	completed := task.StatusCompleted
	if _, err := c.UpdateTask(ctx, "g1", task.Patch{Status: &completed}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if api.items[0].Status != "completed" {
		t.Errorf("expected completed, got %q", api.items[0].Status)
	}

	if err := c.DeleteTask(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.items) != 0 {
		t.Errorf("expected no tasks left, got %d", len(api.items))
	}
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	title := "x"
	_, err := c.UpdateTask(context.Background(), "missing", task.Patch{Title: &title})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_AuthError(t *testing.T) {
	c := newTestClient(t, &fakeAPI{status: http.StatusUnauthorized})
	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, service.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestWrapError_PassesOtherErrors(t *testing.T) {
	other := errors.New("boom")
	if got := wrapError(other); got != other {
		t.Errorf("expected error unchanged, got %v", got)
	}
	if wrapError(nil) != nil {
		t.Error("expected nil")
	}
}
