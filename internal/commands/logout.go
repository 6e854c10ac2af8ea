package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/store"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct {
	purge bool
}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "tasker logout [--purge] [common flags]" }
func (c *LogoutCmd) NeedsStore() bool  { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.purge, "purge", false, "")
}

// Run removes token.json. With --purge it also removes the local state
// directory (cached tasks, filters, theme). oauth_client.json is kept.
func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if c.purge {
		if err := cfg.RemoveState(); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove local state: %v\n", err)
			return exitcode.UserError
		}
	}

	if !cfg.HasToken() {
		if !cfg.Quiet {
			if c.purge {
				fmt.Fprintln(out, "ok")
			} else {
				fmt.Fprintln(out, "not logged in")
			}
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
