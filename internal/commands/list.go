package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/store"
	"tasker/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasker` (no args) and `tasker list [flags]`.
type ListCmd struct {
	status string
	search string
	sortBy string
	from   string
	to     string
	all    bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "tasker list [--status <status|all>] [--search <text>] [--sort <option>] [--from <date>] [--to <date>] [--all]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "q", "", "")
	fs.StringVar(&c.sortBy, "sort", "", "")
	fs.StringVar(&c.from, "from", "", "")
	fs.StringVar(&c.to, "to", "", "")
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	opts, code := c.filterOptions(st, errOut)
	if code != exitcode.Success {
		return code
	}

	if code := loadTasks(ctx, st, errOut); code != exitcode.Success {
		return code
	}

	view := st.FilteredBy(opts)
	if len(view) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTasks(out, st.Tasks(), view)
	return exitcode.Success
}

// filterOptions builds the filters for this run. Status and sort flags are
// saved to the store unless --all is set; search and dates never are.
func (c *ListCmd) filterOptions(st *store.Store, errOut io.Writer) (task.FilterOptions, int) {
	var (
		status string
		sortBy task.SortOption
		err    error
	)
	if c.status != "" {
		if status, err = task.ParseStatusFilter(c.status); err != nil {
			return task.FilterOptions{}, reportError(errOut, err)
		}
	}
	if c.sortBy != "" {
		if sortBy, err = task.ParseSortOption(c.sortBy); err != nil {
			return task.FilterOptions{}, reportError(errOut, err)
		}
	}

	var r task.DateRange
	if c.from != "" {
		start, err := task.ParseDate(c.from, false)
		if err != nil {
			return task.FilterOptions{}, reportError(errOut, err)
		}
		r.Start = &start
	}
	if c.to != "" {
		end, err := task.ParseDate(c.to, true)
		if err != nil {
			return task.FilterOptions{}, reportError(errOut, err)
		}
		r.End = &end
	}

	var opts task.FilterOptions
	if c.all {
		opts = task.DefaultFilters()
		if status != "" {
			opts.Status = status
		}
		if sortBy != "" {
			opts.SortBy = sortBy
		}
	} else {
		if status != "" {
			if err := st.SetStatus(status); err != nil {
				return task.FilterOptions{}, reportError(errOut, err)
			}
		}
		if sortBy != "" {
			if err := st.SetSortBy(sortBy); err != nil {
				return task.FilterOptions{}, reportError(errOut, err)
			}
		}
		opts = st.Filters()
	}

	opts.Search = c.search
	opts.DateRange = r
	return opts, exitcode.Success
}
