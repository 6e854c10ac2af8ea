package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/logging"
	"tasker/internal/persist"
	"tasker/internal/service"
	"tasker/internal/store"
)

// ServiceFactory creates a Service from config.
// p is the client-state persistence; backends that simulate a server on top
// of it (mock) read from it. Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, p *persist.Persistence) (service.Service, error)

// StorageFactory opens the key/value storage for client state.
type StorageFactory func(ctx context.Context, cfg *config.Config) (persist.Storage, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	services ServiceFactory
	storage  StorageFactory
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, services ServiceFactory, storage StorageFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		services: services,
		storage:  storage,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var (
		configDir string
		backend   string
		storage   string
		quiet     bool
		debug     bool
	)

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&backend, "backend", "", "")
	fs.StringVar(&storage, "storage", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(err, errOut)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if backend != "" {
		cfg.Backend = backend
	}
	if storage != "" {
		cfg.Storage = storage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	// Without --debug, commands only print their own error lines.
	log := logr.Discard()
	if debug {
		log = logging.New(errOut, true)
	}
	ctx = logr.NewContext(ctx, log)
	log.V(1).Info("dispatch", "command", cmd.Name(), "backend", cfg.Backend, "storage", cfg.Storage)

	if !cmd.NeedsStore() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	st, closeAll, code := d.openStore(ctx, cfg, log, errOut)
	if code != exitcode.Success {
		return code
	}
	defer closeAll()

	return cmd.Run(ctx, cfg, st, positionalArgs, out, errOut)
}

// openStore builds the storage, the backend and the store on top of them.
// The returned function releases all three.
func (d *Dispatcher) openStore(ctx context.Context, cfg *config.Config, log logr.Logger, errOut io.Writer) (*store.Store, func(), int) {
	if d.storage == nil || d.services == nil {
		fmt.Fprintln(errOut, "error: no backend configured")
		return nil, nil, exitcode.AuthError
	}

	kv, err := d.storage(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: storage error: %s\n", err)
		return nil, nil, exitcode.BackendError
	}
	p := persist.New(kv, log)

	svc, err := d.services(ctx, cfg, p)
	if err != nil {
		kv.Close()
		if errors.Is(err, service.ErrAuth) {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return nil, nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, nil, exitcode.BackendError
	}

	st := store.New(svc, p, log)
	closeAll := func() {
		st.Close()
		if err := svc.Close(); err != nil {
			log.Error(err, "close backend")
		}
		if err := kv.Close(); err != nil {
			log.Error(err, "close storage")
		}
	}
	return st, closeAll, exitcode.Success
}

// flagError reports a flag parsing error.
func flagError(err error, errOut io.Writer) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		flagPart := strings.TrimSpace(parts[0])
		flagPart = strings.TrimPrefix(flagPart, "flag ")
		if len(parts) > 1 {
			flagPart = strings.TrimSpace(parts[len(parts)-1])
		}
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
