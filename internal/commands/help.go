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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasker help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-16s %s\n", name, cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  tasker                                             List tasks with the saved filters
  tasker list [common flags] [--status <status|all>] [--search <text>]
              [--sort <option>] [--from <date>] [--to <date>] [--all]
  tasker add [common flags] [--description <text>] [--status <status>] <title...>
  tasker create [common flags] [--description <text>] [--status <status>] <title...>
  tasker edit [common flags] [--title <title>] [--description <text>] [--status <status>] <id>
  tasker done [common flags] <id>
  tasker rm [common flags] <id>
  tasker show [common flags] <id>
  tasker filters [common flags] [clear]
  tasker theme [common flags] [dark|light|toggle]
  tasker serve [common flags] [--addr <host:port>]
  tasker login [common flags]
  tasker logout [common flags] [--purge]
  tasker help
  tasker version

Statuses: pending, in-progress, completed
Sort options: created-desc, created-asc, title-asc, title-desc, status
Dates: YYYY-MM-DD or RFC 3339
Task ids: a full id or a unique prefix of at least 4 characters

Common flags:
  --config <dir>       Override config directory
  --backend <name>     mock, google or postgres (env TASKER_BACKEND)
  --storage <name>     file, redis or memory (env TASKER_STORAGE)
  --quiet              Suppress informational output
  --debug              Print debug logs to stderr
`
