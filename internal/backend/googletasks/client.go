// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasker/internal/config"
	"tasker/internal/service"
	"tasker/internal/task"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Google Tasks statuses
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"

	// inProgressMarker is the first line of notes of an in-progress task.
	inProgressMarker = "[in-progress]"
)

// Client implements service.Service using Google Tasks API.
// All tasks live in the user's default list.
type Client struct {
	svc *tasks.Service
	log logr.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%w: oauth_client.json not found in %s", service.ErrAuth, cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%w: not logged in (run: tasker login)", service.ErrAuth)
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", service.ErrAuth, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %v", service.ErrAuth, err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{
		svc: svc,
		log: logr.FromContextOrDiscard(ctx).WithName("googletasks"),
	}, nil
}

// ListTasks returns every task of the default list, completed ones included.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	result := []task.Task{}
	err := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				if t.Deleted {
					continue
				}
				result = append(result, fromAPI(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	c.log.V(1).Info("listed", "tasks", len(result))
	return result, nil
}

// CreateTask creates a new task in the default list.
func (c *Client) CreateTask(ctx context.Context, data task.FormData) (task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(DefaultListID, &tasks.Task{
		Title:  data.Title,
		Notes:  encodeNotes(data.Status, data.Description),
		Status: apiStatus(data.Status),
	}).Context(ctx).Do()
	if err != nil {
		return task.Task{}, wrapError(err)
	}
	return fromAPI(created), nil
}

// UpdateTask patches a task. Status and description share the notes field,
// so the current task is read first.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	cur, err := c.svc.Tasks.Get(DefaultListID, id).Context(ctx).Do()
	if err != nil {
		return task.Task{}, wrapError(err)
	}
	merged := patch.Apply(fromAPI(cur), time.Time{})

	body := &tasks.Task{
		Title:  merged.Title,
		Notes:  encodeNotes(merged.Status, merged.Description),
		Status: apiStatus(merged.Status),
	}
	body.ForceSendFields = []string{"Notes"}
	if body.Status == statusNeedsAction {
		body.NullFields = []string{"Completed"}
	}

	updated, err := c.svc.Tasks.Patch(DefaultListID, id, body).Context(ctx).Do()
	if err != nil {
		return task.Task{}, wrapError(err)
	}
	return fromAPI(updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Close implements service.Service.
func (c *Client) Close() error { return nil }

// fromAPI converts a Google task. Both timestamps come from Updated; the
// API does not expose a creation time.
func fromAPI(t *tasks.Task) task.Task {
	status, desc := decodeNotes(t.Notes)
	if t.Status == statusCompleted {
		status = task.StatusCompleted
	}
	updated, _ := time.Parse(time.RFC3339Nano, t.Updated)
	updated = task.Stamp(updated)
	return task.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: desc,
		Status:      status,
		CreatedAt:   updated,
		UpdatedAt:   updated,
	}
}

func apiStatus(s task.Status) string {
	if s == task.StatusCompleted {
		return statusCompleted
	}
	return statusNeedsAction
}

// encodeNotes stores the in-progress state as the first line of notes.
func encodeNotes(s task.Status, desc string) string {
	if s != task.StatusInProgress {
		return desc
	}
	if desc == "" {
		return inProgressMarker
	}
	return inProgressMarker + "\n" + desc
}

// decodeNotes reverses encodeNotes. Completed status is not stored in notes.
func decodeNotes(notes string) (task.Status, string) {
	first, rest, _ := strings.Cut(notes, "\n")
	if strings.TrimSpace(first) == inProgressMarker {
		return task.StatusInProgress, strings.TrimSpace(rest)
	}
	return task.StatusPending, strings.TrimSpace(notes)
}

// wrapError maps API errors to service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: tasker login)", service.ErrAuth)
		case http.StatusNotFound:
			return fmt.Errorf("task %w", service.ErrNotFound)
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token expired or revoked (run: tasker login)", service.ErrAuth)
	}

	return err
}
