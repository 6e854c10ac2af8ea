// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tasker/internal/service"
	"tasker/internal/task"
)

// BaseTime is the timestamp of the first task created by FakeService.
var BaseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned as "task-0001", "task-0002", ... and every call advances
// the fake clock by one minute.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []task.Task
	nextID int
	clock  time.Time

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		clock:  BaseTime,
		Calls:  make(map[string]int),
	}
}

// AddTask seeds a task and returns it.
func (f *FakeService) AddTask(title string, status task.Status) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := task.Task{
		ID:        f.newID(),
		Title:     title,
		Status:    status,
		CreatedAt: f.tick(),
	}
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	return t
}

// Snapshot returns the tasks currently held by the fake backend.
func (f *FakeService) Snapshot() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]task.Task(nil), f.tasks...)
}

func (f *FakeService) newID() string {
	id := fmt.Sprintf("task-%04d", f.nextID)
	f.nextID++
	return id
}

func (f *FakeService) tick() time.Time {
	t := f.clock
	f.clock = f.clock.Add(time.Minute)
	return t
}

func (f *FakeService) record(name string) {
	f.mu.Lock()
	f.Calls[name]++
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Snapshot(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, data task.FormData) (task.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return task.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := task.Task{
		ID:          f.newID(),
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		CreatedAt:   f.tick(),
	}
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return task.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = patch.Apply(t, f.tick())
			return f.tasks[i], nil
		}
	}
	return task.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// Close implements service.Service.
func (f *FakeService) Close() error { return nil }
