package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/store"
	"tasker/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given, so an
// explicit empty value can be told apart from an absent flag.
type optString struct {
	set bool
	val string
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.set = true
	o.val = s
	return nil
}

func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.val
	return &v
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optString
	description optString
	status      optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasker edit [--title <title>] [--description <text>] [--status <status>] <id>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.status = optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	patch := task.Patch{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
	}
	if c.status.set {
		status, err := task.ParseStatus(c.status.val)
		if err != nil {
			return reportError(errOut, err)
		}
		patch.Status = &status
	}
	if patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to update (use --title, --description or --status)")
		return exitcode.UserError
	}
	patch, err := patch.Normalize()
	if err != nil {
		return reportError(errOut, err)
	}

	return updateTask(ctx, cfg, st, args, patch, out, errOut)
}

// updateTask resolves the task named by args and applies patch.
func updateTask(ctx context.Context, cfg *config.Config, st *store.Store, args []string, patch task.Patch, out, errOut io.Writer) int {
	if _, err := ParseTaskRef(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if code := loadTasks(ctx, st, errOut); code != exitcode.Success {
		return code
	}

	t, code := resolveTask(st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := st.Update(ctx, t.ID, patch); err != nil {
		return reportError(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
