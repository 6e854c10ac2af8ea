package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/logging"
	"tasker/internal/server"
	"tasker/internal/store"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the HTTP API" }
func (c *ServeCmd) Usage() string     { return "tasker serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsStore() bool  { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.Env.HTTP.Addr
	}
	// Serve logs at info level even without --debug.
	log := logging.New(errOut, cfg.Debug)

	// A failed initial load is reported through /api/v1/state and can be
	// retried with POST /api/v1/tasks/refresh.
	st.Initialize(ctx)
	if msg := st.Err(); msg != "" {
		log.Info("initial load failed", "error", msg)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	opts := server.Options{
		Version:      Version,
		CORSOrigins:  cfg.Env.HTTP.CORSOrigins,
		AccessLog:    cfg.Debug,
		ReadTimeout:  cfg.Env.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.Env.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Env.HTTP.IdleTimeout.Duration(),
		Log:          log,
	}
	if !cfg.Quiet {
		fmt.Fprintf(errOut, "listening on http://%s\n", addr)
	}
	if err := server.Run(ctx, addr, st, opts); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
