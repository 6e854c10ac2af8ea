// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"

	"tasker/internal/task"
)

// Service defines the interface for task backend operations.
// The store talks to every backend (simulated, Google Tasks, Postgres)
// through this interface only.
type Service interface {
	// ListTasks returns every task known to the backend.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// CreateTask creates a task. The backend assigns the ID and timestamps.
	CreateTask(ctx context.Context, data task.FormData) (task.Task, error)

	// UpdateTask applies a partial update and returns the backend's view
	// of the task.
	UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
