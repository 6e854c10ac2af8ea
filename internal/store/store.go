// Package store holds the client-side task state: the task list, the filter
// configuration, loading/error status and UI preferences. Every mutation goes
// through the backend first and is then applied locally; every change is
// written through to persistence.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"tasker/internal/persist"
	"tasker/internal/service"
	"tasker/internal/task"
)

const (
	// MinPrefixLen is the shortest ID prefix accepted by Lookup.
	MinPrefixLen = 4

	// InitializeTimeout bounds one shared Initialize fetch.
	InitializeTimeout = 30 * time.Second
)

var (
	// ErrNotFound is returned when no task has the given ID.
	ErrNotFound = service.ErrNotFound

	// ErrAmbiguous is returned when an ID prefix matches several tasks.
	ErrAmbiguous = errors.New("ambiguous task id")
)

// Store is the task state container. It is safe for concurrent use.
type Store struct {
	svc     service.Service
	persist *persist.Persistence
	log     logr.Logger
	now     func() time.Time

	tasks   *Value[[]task.Task]
	filters *Value[task.FilterOptions]
	loading *Value[bool]
	errMsg  *Value[string]
	prefs   *Value[persist.Preferences]

	sf     singleflight.Group
	unsubs []func()
}

// New creates a store backed by svc. If p is nil, state is not persisted.
// Persisted filters and preferences are loaded before write-through starts.
func New(svc service.Service, p *persist.Persistence, log logr.Logger) *Store {
	s := &Store{
		svc:     svc,
		persist: p,
		log:     log.WithName("store"),
		now:     time.Now,
		tasks:   NewValue([]task.Task{}),
		filters: NewValue(task.DefaultFilters()),
		loading: NewValue(false),
		errMsg:  NewValue(""),
		prefs:   NewValue(persist.Preferences{}),
	}

	if p == nil {
		return s
	}

	if saved, ok := p.LoadFilters(); ok {
		s.filters.Set(mergeSavedFilters(s.filters.Get(), saved))
	}
	if prefs, ok := p.LoadUIPreferences(); ok {
		s.prefs.Set(prefs)
	}

	s.unsubs = append(s.unsubs,
		s.tasks.Subscribe(p.SaveTasks),
		s.filters.Subscribe(p.SaveFilters),
		s.prefs.Subscribe(p.SaveUIPreferences),
	)
	return s
}

// mergeSavedFilters overlays valid persisted values on the defaults.
func mergeSavedFilters(cur task.FilterOptions, saved persist.SavedFilters) task.FilterOptions {
	if saved.Status != "" {
		if st, err := task.ParseStatusFilter(saved.Status); err == nil {
			cur.Status = st
		}
	}
	if saved.SortBy != "" {
		if by, err := task.ParseSortOption(string(saved.SortBy)); err == nil {
			cur.SortBy = by
		}
	}
	return cur
}

// Close stops write-through to persistence.
func (s *Store) Close() {
	for _, u := range s.unsubs {
		u()
	}
	s.unsubs = nil
}

// Initialize replaces the task list with the backend's. A failure is recorded
// in Err and logged, not returned. Concurrent calls share one fetch; the fetch
// is detached from any single caller's cancellation and bounded by
// InitializeTimeout. A caller whose ctx ends returns early while the shared
// fetch completes for the others.
func (s *Store) Initialize(ctx context.Context) {
	ch := s.sf.DoChan("initialize", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), InitializeTimeout)
		defer cancel()

		s.loading.Set(true)
		defer s.loading.Set(false)
		s.errMsg.Set("")

		fetched, err := s.svc.ListTasks(fetchCtx)
		if err != nil {
			msg := err.Error()
			if msg == "" {
				msg = "Failed to load tasks"
			}
			s.errMsg.Set(msg)
			s.log.Error(err, "Failed to initialize tasks")
			return nil, nil
		}
		if fetched == nil {
			fetched = []task.Task{}
		}
		s.tasks.Set(fetched)
		s.log.V(1).Info("initialized", "tasks", len(fetched))
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// Create creates a task through the backend and appends it to the list.
func (s *Store) Create(ctx context.Context, data task.FormData) (task.Task, error) {
	s.errMsg.Set("")

	data, err := data.Normalize()
	if err != nil {
		return task.Task{}, s.fail(err)
	}

	created, err := s.svc.CreateTask(ctx, data)
	if err != nil {
		return task.Task{}, s.fail(err)
	}

	s.tasks.Update(func(cur []task.Task) []task.Task {
		return append(slices.Clip(cur), created)
	})
	s.log.V(1).Info("created", "id", created.ID)
	return created, nil
}

// Update sends a partial update to the backend, then merges it into the local
// task and re-stamps UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	s.errMsg.Set("")

	patch, err := patch.Normalize()
	if err != nil {
		return task.Task{}, s.fail(err)
	}
	if _, ok := s.Task(id); !ok {
		return task.Task{}, s.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	if _, err := s.svc.UpdateTask(ctx, id, patch); err != nil {
		return task.Task{}, s.fail(err)
	}

	var (
		merged task.Task
		found  bool
	)
	now := task.Stamp(s.now())
	s.tasks.Update(func(cur []task.Task) []task.Task {
		if !slices.ContainsFunc(cur, func(t task.Task) bool { return t.ID == id }) {
			return cur
		}
		next := make([]task.Task, len(cur))
		for i, t := range cur {
			if t.ID == id {
				t = patch.Apply(t, now)
				merged, found = t, true
			}
			next[i] = t
		}
		return next
	})
	if !found {
		// Deleted locally while the backend call was in flight.
		return task.Task{}, s.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	s.log.V(1).Info("updated", "id", id)
	return merged, nil
}

// Delete deletes a task through the backend and removes it from the list.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.errMsg.Set("")

	if _, ok := s.Task(id); !ok {
		return s.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if err := s.svc.DeleteTask(ctx, id); err != nil {
		return s.fail(err)
	}

	s.tasks.Update(func(cur []task.Task) []task.Task {
		return slices.DeleteFunc(slices.Clone(cur), func(t task.Task) bool { return t.ID == id })
	})
	s.log.V(1).Info("deleted", "id", id)
	return nil
}

// fail records err as the current error message and returns it.
func (s *Store) fail(err error) error {
	s.errMsg.Set(err.Error())
	return err
}

// ClearError resets the error message.
func (s *Store) ClearError() {
	s.errMsg.Set("")
}

// Err returns the last error message, or "" if none.
func (s *Store) Err() string {
	return s.errMsg.Get()
}

// Loading reports whether Initialize is in progress.
func (s *Store) Loading() bool {
	return s.loading.Get()
}

// Tasks returns a copy of the task list in insertion order.
func (s *Store) Tasks() []task.Task {
	return slices.Clone(s.tasks.Get())
}

// Task returns the task with the given ID.
func (s *Store) Task(id string) (task.Task, bool) {
	for _, t := range s.tasks.Get() {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Lookup resolves a full task ID or a unique ID prefix of at least
// MinPrefixLen characters.
func (s *Store) Lookup(ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := s.Task(ref); ok {
		return t, nil
	}
	if len(ref) >= MinPrefixLen {
		var matches []task.Task
		for _, t := range s.tasks.Get() {
			if strings.HasPrefix(t.ID, ref) {
				matches = append(matches, t)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
		default:
			return task.Task{}, fmt.Errorf("%w: %s (matches %d tasks)", ErrAmbiguous, ref, len(matches))
		}
	}
	return task.Task{}, fmt.Errorf("task %w: %s", ErrNotFound, ref)
}

// Filtered returns the task list filtered and sorted by the current filters.
func (s *Store) Filtered() []task.Task {
	return task.Apply(s.tasks.Get(), s.filters.Get())
}

// FilteredBy returns the task list filtered and sorted by opts, ignoring the
// stored filters.
func (s *Store) FilteredBy(opts task.FilterOptions) []task.Task {
	return task.Apply(s.tasks.Get(), opts)
}

// OnTasksChange registers fn to run after every task list change.
func (s *Store) OnTasksChange(fn func([]task.Task)) (unsubscribe func()) {
	return s.tasks.Subscribe(fn)
}
