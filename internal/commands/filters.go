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
)

func init() {
	Register(&FiltersCmd{})
}

// FiltersCmd implements the filters command.
type FiltersCmd struct{}

func (c *FiltersCmd) Name() string      { return "filters" }
func (c *FiltersCmd) Aliases() []string { return nil }
func (c *FiltersCmd) Synopsis() string  { return "Print or reset the saved filters" }
func (c *FiltersCmd) Usage() string     { return "tasker filters [clear]" }
func (c *FiltersCmd) NeedsStore() bool  { return true }

func (c *FiltersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *FiltersCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	switch {
	case len(args) == 0:
		output.FormatFilters(out, st.Filters())
		return exitcode.Success
	case len(args) == 1 && args[0] == "clear":
		st.ClearFilters()
		printOK(out, cfg.Quiet)
		return exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
}
