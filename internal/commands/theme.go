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
	Register(&ThemeCmd{})
}

// ThemeCmd implements the theme command.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Print or change the color theme" }
func (c *ThemeCmd) Usage() string     { return "tasker theme [dark|light|toggle]" }
func (c *ThemeCmd) NeedsStore() bool  { return true }

func (c *ThemeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if len(args) == 0 {
		fmt.Fprintln(out, output.ThemeName(st.Preferences()))
		return exitcode.Success
	}

	switch args[0] {
	case "dark":
		st.SetDarkMode(true)
	case "light":
		st.SetDarkMode(false)
	case "toggle":
		st.ToggleDarkMode()
	default:
		fmt.Fprintf(errOut, "error: unknown theme: %s (want dark, light or toggle)\n", args[0])
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, output.ThemeName(st.Preferences()))
	}
	return exitcode.Success
}
