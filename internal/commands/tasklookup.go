package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/store"
	"tasker/internal/task"
)

// loadTasks fetches the task list into st. Returns exitcode.Success or the
// code to exit with after printing the error.
func loadTasks(ctx context.Context, st *store.Store, errOut io.Writer) int {
	st.Initialize(ctx)
	if msg := st.Err(); msg != "" {
		fmt.Fprintf(errOut, "error: backend error: %s\n", msg)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// resolveTask parses args as a task reference and looks it up in st.
// Tasks must already be loaded.
func resolveTask(st *store.Store, args []string, errOut io.Writer) (task.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, exitcode.UserError
	}
	t, err := st.Lookup(ref)
	if err != nil {
		return task.Task{}, reportError(errOut, err)
	}
	return t, exitcode.Success
}

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case isUserError(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrAuth):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

func isUserError(err error) bool {
	for _, target := range []error{
		task.ErrTitleRequired,
		task.ErrInvalidStatus,
		task.ErrInvalidSort,
		task.ErrInvalidDate,
		store.ErrNotFound,
		store.ErrAmbiguous,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// printOK prints "ok" unless quiet.
func printOK(out io.Writer, quiet bool) {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
}
