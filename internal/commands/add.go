package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/store"
	"tasker/internal/task"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// addFlags are the flags shared by add and create.
type addFlags struct {
	description string
	status      string
}

func (f *addFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.status, "s", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags addFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasker add [--description <text>] [--status <status>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, st, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags addFlags
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "tasker create [--description <text>] [--status <status>] <title...>"
}
func (c *CreateCmd) NeedsStore() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, st, c.flags, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, st *store.Store, f addFlags, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	data := task.FormData{Title: title, Description: f.description}
	if f.status != "" {
		status, err := task.ParseStatus(f.status)
		if err != nil {
			return reportError(errOut, err)
		}
		data.Status = status
	}
	data, err := data.Normalize()
	if err != nil {
		return reportError(errOut, err)
	}

	// Local state must hold the current list before it is appended to.
	if code := loadTasks(ctx, st, errOut); code != exitcode.Success {
		return code
	}

	if _, err := st.Create(ctx, data); err != nil {
		return reportError(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
