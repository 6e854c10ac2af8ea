package persist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"

	"tasker/internal/task"
)

// Storage keys.
const (
	KeyTasks         = "tasks"
	KeyFilters       = "filters"
	KeyUIPreferences = "uiPreferences"
)

// opTimeout bounds every storage call made by Persistence.
const opTimeout = 3 * time.Second

// SavedFilters is the persisted subset of the filter options.
// Search text and date range are session-only.
type SavedFilters struct {
	Status string          `json:"status,omitempty"`
	SortBy task.SortOption `json:"sortBy,omitempty"`
}

// Preferences are the persisted UI preferences.
type Preferences struct {
	DarkMode bool `json:"darkMode"`
}

// Persistence reads and writes typed state to a Storage.
// Failures are logged and swallowed: saves never fail the caller and loads
// report "nothing stored".
type Persistence struct {
	st  Storage
	log logr.Logger
}

// New returns a Persistence over st.
func New(st Storage, log logr.Logger) *Persistence {
	return &Persistence{st: st, log: log.WithName("persist")}
}

// SaveTasks stores the task list.
func (p *Persistence) SaveTasks(tasks []task.Task) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	p.save(KeyTasks, tasks, "Failed to save tasks")
}

// LoadTasks returns the stored task list.
func (p *Persistence) LoadTasks() ([]task.Task, bool) {
	var tasks []task.Task
	if !p.load(KeyTasks, &tasks, "Failed to load tasks") {
		return nil, false
	}
	return tasks, true
}

// SaveFilters stores the persistent part of opts.
func (p *Persistence) SaveFilters(opts task.FilterOptions) {
	p.save(KeyFilters, SavedFilters{Status: opts.Status, SortBy: opts.SortBy}, "Failed to save filters")
}

// LoadFilters returns the stored filters.
func (p *Persistence) LoadFilters() (SavedFilters, bool) {
	var f SavedFilters
	if !p.load(KeyFilters, &f, "Failed to load filters") {
		return SavedFilters{}, false
	}
	return f, true
}

// SaveUIPreferences stores the UI preferences.
func (p *Persistence) SaveUIPreferences(prefs Preferences) {
	p.save(KeyUIPreferences, prefs, "Failed to save UI preferences")
}

// LoadUIPreferences returns the stored UI preferences.
func (p *Persistence) LoadUIPreferences() (Preferences, bool) {
	var prefs Preferences
	if !p.load(KeyUIPreferences, &prefs, "Failed to load UI preferences") {
		return Preferences{}, false
	}
	return prefs, true
}

// Storage returns the underlying key/value storage.
func (p *Persistence) Storage() Storage {
	return p.st
}

func (p *Persistence) save(key string, v any, msg string) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error(err, msg, "key", key)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := p.st.Set(ctx, key, data); err != nil {
		p.log.Error(err, msg, "key", key)
		return
	}
	p.log.V(1).Info("saved", "key", key, "bytes", len(data))
}

func (p *Persistence) load(key string, v any, msg string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	data, ok, err := p.st.Get(ctx, key)
	if err != nil {
		p.log.Error(err, msg, "key", key)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		p.log.Error(err, msg, "key", key)
		return false
	}
	return true
}
