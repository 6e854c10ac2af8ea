// Package mockapi implements service.Service as a simulated remote backend.
// Every call waits a fixed delay and then fails with a fixed probability.
package mockapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"tasker/internal/persist"
	"tasker/internal/task"
)

const (
	// DefaultDelay is the artificial latency of every call.
	DefaultDelay = 500 * time.Millisecond

	// DefaultErrorRate is the probability that a call fails.
	DefaultErrorRate = 0.05
)

// ErrNetwork is the injected failure.
var ErrNetwork = errors.New("Network error: Unable to connect to server")

//go:embed seed.json
var seedJSON []byte

// Options configures the simulated backend. The zero value has no delay,
// never fails and always serves the seed data.
type Options struct {
	Delay     time.Duration
	ErrorRate float64

	// Persist, if set, is consulted by ListTasks before the seed data.
	Persist *persist.Persistence

	// Test hooks. Nil means the real implementation.
	Rand  func() float64
	Now   func() time.Time
	NewID func() string

	Log logr.Logger
}

// DefaultOptions returns the options of the stock simulated backend.
func DefaultOptions() Options {
	return Options{
		Delay:     DefaultDelay,
		ErrorRate: DefaultErrorRate,
		Log:       logr.Discard(),
	}
}

// Client implements service.Service.
type Client struct {
	opts Options
	log  logr.Logger
}

// New creates a simulated backend.
func New(opts Options) *Client {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Client{opts: opts, log: log.WithName("mockapi")}
}

// Seed returns the embedded sample tasks.
func Seed() ([]task.Task, error) {
	var tasks []task.Task
	if err := json.Unmarshal(seedJSON, &tasks); err != nil {
		return nil, fmt.Errorf("invalid seed data: %w", err)
	}
	return tasks, nil
}

// simulate waits the configured delay and then rolls for a failure.
func (c *Client) simulate(ctx context.Context, op string) error {
	if c.opts.Delay > 0 {
		timer := time.NewTimer(c.opts.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if c.opts.ErrorRate > 0 && c.opts.Rand() < c.opts.ErrorRate {
		c.log.V(1).Info("injected failure", "op", op)
		return ErrNetwork
	}
	return nil
}

func (c *Client) now() time.Time {
	return task.Stamp(c.opts.Now())
}

// ListTasks returns the persisted task list if there is one, else the seed data.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	if err := c.simulate(ctx, "ListTasks"); err != nil {
		return nil, err
	}

	if c.opts.Persist != nil {
		if stored, ok := c.opts.Persist.LoadTasks(); ok {
			if stored == nil {
				stored = []task.Task{}
			}
			return stored, nil
		}
	}
	return Seed()
}

// CreateTask assigns a new id and timestamps.
func (c *Client) CreateTask(ctx context.Context, data task.FormData) (task.Task, error) {
	if err := c.simulate(ctx, "CreateTask"); err != nil {
		return task.Task{}, err
	}

	now := c.now()
	return task.Task{
		ID:          c.opts.NewID(),
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateTask echoes the patched fields. The backend keeps no state, so
// fields absent from the patch come back empty and the caller merges.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	if err := c.simulate(ctx, "UpdateTask"); err != nil {
		return task.Task{}, err
	}

	now := c.now()
	t := task.Task{ID: id, Status: task.StatusPending, CreatedAt: now, UpdatedAt: now}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return t, nil
}

// DeleteTask succeeds unless a failure is injected.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.simulate(ctx, "DeleteTask")
}

// Close implements service.Service.
func (c *Client) Close() error { return nil }
