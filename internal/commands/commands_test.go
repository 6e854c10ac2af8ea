package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/go-logr/logr"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/persist"
	"tasker/internal/service"
	"tasker/internal/store"
	"tasker/internal/task"
	"tasker/internal/testutil"
)

// fixture is a store over a FakeService seeded with three tasks:
// task-0001 "Buy milk" (pending), task-0002 "Write report" (in-progress)
// and task-0003 "File taxes" (completed).
type fixture struct {
	svc     *testutil.FakeService
	persist *persist.Persistence
	st      *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", task.StatusPending)
	svc.AddTask("Write report", task.StatusInProgress)
	svc.AddTask("File taxes", task.StatusCompleted)

	p := persist.New(persist.NewMemory(), logr.Discard())
	st := store.New(svc, p, logr.Discard())
	t.Cleanup(st.Close)
	return &fixture{svc: svc, persist: p, st: st}
}

// runCommand parses args with the command's flags and runs it against st.
func runCommand(t *testing.T, cmd commands.Command, st *store.Store, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags %q: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	code = cmd.Run(context.Background(), cfg, st, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectSuccess(t *testing.T, stdout, stderr string, code int, wantOut string) {
	t.Helper()
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != wantOut {
		t.Errorf("expected %q, got %q", wantOut, stdout)
	}
}

func expectFailure(t *testing.T, stdout, stderr string, code, wantCode int, wantErr string) {
	t.Helper()
	if code != wantCode {
		t.Errorf("expected exit code %d, got %d", wantCode, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != wantErr {
		t.Errorf("expected %q, got %q", wantErr, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)
	expectSuccess(t, stdout, stderr, code, "tasker 0.1.0\n")
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "tasker add", "tasker serve"} {
		if !bytes.Contains([]byte(stdout), []byte(want)) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_Default(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	testutil.GoldenString(t, "list_default", stdout)
}

func TestListCommand_SortByTitle(t *testing.T) {
	f := newFixture(t)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--sort", "title-asc"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.GoldenString(t, "list_sort_title", stdout)
}

func TestListCommand_StatusFilterIsSaved(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--status", "pending"}, false)
	expectSuccess(t, stdout, stderr, code, "task-0001  pending      Buy milk\n")

	if got := f.st.Filters().Status; got != "pending" {
		t.Errorf("expected saved status filter pending, got %q", got)
	}

	// A later store on the same persistence starts with the saved filter.
	next := store.New(f.svc, f.persist, logr.Discard())
	defer next.Close()
	if got := next.Filters().Status; got != "pending" {
		t.Errorf("expected reloaded status filter pending, got %q", got)
	}
}

func TestListCommand_AllIgnoresSavedFilters(t *testing.T) {
	f := newFixture(t)
	if err := f.st.SetStatus("pending"); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--all", "--status", "completed"}, false)
	expectSuccess(t, stdout, stderr, code, "task-0003  completed    File taxes\n")

	if got := f.st.Filters().Status; got != "pending" {
		t.Errorf("--all must not change saved filters, got status %q", got)
	}
}

func TestListCommand_Search(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"-q", "MILK"}, false)
	expectSuccess(t, stdout, stderr, code, "task-0001  pending      Buy milk\n")

	if got := f.st.Filters().Search; got != "" {
		t.Errorf("search must not be saved, got %q", got)
	}
}

func TestListCommand_DateRange(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--from", "2024-01-16"}, false)
	expectSuccess(t, stdout, stderr, code, "no tasks found\n")

	stdout, stderr, code = runCommand(t, &commands.ListCmd{}, f.st, []string{"--from", "2024-01-15", "--to", "2024-01-15"}, false)
	if code != exitcode.Success || stderr != "" {
		t.Fatalf("unexpected failure: %d %q", code, stderr)
	}
	if n := bytes.Count([]byte(stdout), []byte("\n")); n != 3 {
		t.Errorf("expected 3 tasks, got %d:\n%s", n, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	st := store.New(testutil.NewFakeService(), nil, logr.Discard())

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, st, nil, false)
	expectSuccess(t, stdout, stderr, code, "no tasks found\n")
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	st := store.New(testutil.NewFakeService(), nil, logr.Discard())

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, st, nil, true)

	// Quiet mode should suppress "no tasks found"
	expectSuccess(t, stdout, stderr, code, "")
}

func TestListCommand_InvalidStatus(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--status", "bogus"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: invalid status: bogus\n")
}

func TestListCommand_InvalidSort(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"--sort", "random"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: invalid sort option: random\n")
}

func TestListCommand_UnexpectedArgument(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, []string{"extra"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: unexpected argument: extra\n")
}

func TestListCommand_BackendError(t *testing.T) {
	f := newFixture(t)
	f.svc.ListTasksErr = errors.New("connection refused")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f.st, nil, false)
	expectFailure(t, stdout, stderr, code, exitcode.BackendError, "error: backend error: connection refused\n")
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f.st,
		[]string{"--status", "in-progress", "-d", "  monthly  ", "Pay", "rent"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	tasks := f.svc.Snapshot()
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}
	got := tasks[3]
	if got.Title != "Pay rent" || got.Description != "monthly" || got.Status != task.StatusInProgress {
		t.Errorf("unexpected task: %+v", got)
	}
	if _, ok := f.st.Task(got.ID); !ok {
		t.Errorf("created task %s missing from store", got.ID)
	}
	if n := len(f.st.Tasks()); n != 4 {
		t.Errorf("expected store to hold 4 tasks, got %d", n)
	}
}

func TestAddCommand_DefaultsToPending(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.CreateCmd{}, f.st, []string{"Walk dog"}, true)
	expectSuccess(t, stdout, stderr, code, "")

	tasks := f.svc.Snapshot()
	if got := tasks[len(tasks)-1]; got.Status != task.StatusPending {
		t.Errorf("expected pending, got %q", got.Status)
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f.st, []string{"   "}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: title required\n")

	if f.svc.Calls["CreateTask"] != 0 {
		t.Error("backend must not be called for an invalid task")
	}
}

func TestAddCommand_InvalidStatus(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f.st, []string{"-s", "later", "Pay rent"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: invalid status: later\n")
}

func TestAddCommand_BackendError(t *testing.T) {
	f := newFixture(t)
	f.svc.CreateTaskErr = errors.New("quota exceeded")

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f.st, []string{"Pay rent"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.BackendError, "error: backend error: quota exceeded\n")

	if n := len(f.st.Tasks()); n != 3 {
		t.Errorf("failed create must not change the store, got %d tasks", n)
	}
	if f.st.Err() != "quota exceeded" {
		t.Errorf("expected store error to be recorded, got %q", f.st.Err())
	}
}

// Tests for done command
func TestDoneCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f.st, []string{"task-0001"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if got := f.svc.Snapshot()[0].Status; got != task.StatusCompleted {
		t.Errorf("expected backend status completed, got %q", got)
	}
	if got, _ := f.st.Task("task-0001"); got.Status != task.StatusCompleted {
		t.Errorf("expected store status completed, got %q", got.Status)
	}
}

func TestDoneCommand_TaskRefErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing", nil, exitcode.UserError, "error: task reference required\n"},
		{"too short", []string{"tas"}, exitcode.UserError, "error: task reference too short: tas (need at least 4 characters)\n"},
		{"extra argument", []string{"task-0001", "task-0002"}, exitcode.UserError, "error: unexpected argument: task-0002\n"},
		{"ambiguous", []string{"task-"}, exitcode.UserError, "error: ambiguous task id: task- (matches 3 tasks)\n"},
		{"not found", []string{"zzzz"}, exitcode.UserError, "error: task not found: zzzz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f.st, tt.args, false)
			expectFailure(t, stdout, stderr, code, tt.wantCode, tt.wantErr)
			if f.svc.Calls["UpdateTask"] != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

func TestDoneCommand_Prefix(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Only one", task.StatusPending)
	st := store.New(svc, nil, logr.Discard())

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, st, []string{"task"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if got := svc.Snapshot()[0].Status; got != task.StatusCompleted {
		t.Errorf("expected prefix to resolve, status %q", got)
	}
}

// Tests for edit command
func TestEditCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f.st,
		[]string{"--title", "Write annual report", "-d", "due Friday", "task-0002"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	got, _ := f.st.Task("task-0002")
	if got.Title != "Write annual report" || got.Description != "due Friday" || got.Status != task.StatusInProgress {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	f := newFixture(t)
	desc := "notes"
	f.st.Initialize(context.Background())
	if _, err := f.st.Update(context.Background(), "task-0001", task.Patch{Description: &desc}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f.st, []string{"-d", "", "task-0001"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if got := f.svc.Snapshot()[0].Description; got != "" {
		t.Errorf("expected description cleared, got %q", got)
	}
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f.st, []string{"task-0001"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError,
		"error: nothing to update (use --title, --description or --status)\n")
}

func TestEditCommand_EmptyTitle(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f.st, []string{"-t", "  ", "task-0001"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: title required\n")
}

func TestEditCommand_BackendError(t *testing.T) {
	f := newFixture(t)
	f.svc.UpdateTaskErr = errors.New("timeout")

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f.st, []string{"-s", "completed", "task-0001"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.BackendError, "error: backend error: timeout\n")

	if got, _ := f.st.Task("task-0001"); got.Status != task.StatusPending {
		t.Errorf("failed update must not change the store, got %q", got.Status)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f.st, []string{"task-0001"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if n := len(f.svc.Snapshot()); n != 2 {
		t.Errorf("expected 2 tasks in backend, got %d", n)
	}
	if _, ok := f.st.Task("task-0001"); ok {
		t.Error("deleted task still in store")
	}
}

func TestRmCommand_AuthError(t *testing.T) {
	f := newFixture(t)
	f.svc.DeleteTaskErr = service.ErrAuth

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f.st, []string{"task-0001"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.AuthError, "error: auth error\n")

	if n := len(f.st.Tasks()); n != 3 {
		t.Errorf("failed delete must not change the store, got %d tasks", n)
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, f.st, []string{"task-0002"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	testutil.GoldenString(t, "show_task", stdout)
}

func TestShowCommand_MissingRef(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, f.st, nil, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: task reference required\n")
	if f.svc.Calls["ListTasks"] != 0 {
		t.Error("tasks must not be fetched for a bad reference")
	}
}

// Tests for filters command
func TestFiltersCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.FiltersCmd{}, f.st, nil, false)
	expectSuccess(t, stdout, stderr, code, "status: all\nsortBy: created-desc\n")

	if err := f.st.SetStatus("completed"); err != nil {
		t.Fatal(err)
	}
	if err := f.st.SetSortBy(task.SortTitleAsc); err != nil {
		t.Fatal(err)
	}
	f.st.SetSearch("milk")

	stdout, stderr, code = runCommand(t, &commands.FiltersCmd{}, f.st, nil, false)
	expectSuccess(t, stdout, stderr, code, "status: completed\nsortBy: title-asc\nsearch: milk\n")

	stdout, stderr, code = runCommand(t, &commands.FiltersCmd{}, f.st, []string{"clear"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if got := f.st.Filters(); got.Status != "all" || got.SortBy != task.SortCreatedDesc || got.Search != "" {
		t.Errorf("expected default filters, got %+v", got)
	}
}

func TestFiltersCommand_UnexpectedArgument(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.FiltersCmd{}, f.st, []string{"reset"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: unexpected argument: reset\n")
}

// Tests for theme command
func TestThemeCommand(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ThemeCmd{}, f.st, nil, false)
	expectSuccess(t, stdout, stderr, code, "light\n")

	stdout, stderr, code = runCommand(t, &commands.ThemeCmd{}, f.st, []string{"dark"}, false)
	expectSuccess(t, stdout, stderr, code, "dark\n")
	if !f.st.DarkMode() {
		t.Error("expected dark mode on")
	}

	stdout, stderr, code = runCommand(t, &commands.ThemeCmd{}, f.st, []string{"toggle"}, true)
	expectSuccess(t, stdout, stderr, code, "")
	if f.st.DarkMode() {
		t.Error("expected dark mode off after toggle")
	}

	prefs, ok := f.persist.LoadUIPreferences()
	if !ok || prefs.DarkMode {
		t.Errorf("expected persisted light theme, got %+v (found %v)", prefs, ok)
	}
}

func TestThemeCommand_Unknown(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, code := runCommand(t, &commands.ThemeCmd{}, f.st, []string{"blue"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: unknown theme: blue (want dark, light or toggle)\n")
}
