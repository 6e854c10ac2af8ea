// Package main is the entry point for the tasker CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"

	"tasker/internal/backend/googletasks"
	"tasker/internal/backend/mockapi"
	"tasker/internal/backend/postgres"
	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/persist"
	"tasker/internal/service"
)

func main() {
	// A .env file in the working directory is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: .env: %v\n", err)
		os.Exit(1)
	}

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService, newStorage)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService builds the backend selected by cfg.Backend.
func newService(ctx context.Context, cfg *config.Config, p *persist.Persistence) (service.Service, error) {
	log := logr.FromContextOrDiscard(ctx)
	switch cfg.Backend {
	case config.BackendMock:
		return mockapi.New(mockapi.Options{
			Delay:     cfg.Env.Mock.Delay.Duration(),
			ErrorRate: cfg.Env.Mock.ErrorRate,
			Persist:   p,
			Log:       log,
		}), nil
	case config.BackendGoogle:
		return googletasks.New(ctx, cfg)
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.Env.PG.DSN, log)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// newStorage opens the client-state storage selected by cfg.Storage.
func newStorage(ctx context.Context, cfg *config.Config) (persist.Storage, error) {
	switch cfg.Storage {
	case config.StorageFile:
		return persist.NewFile(cfg.StateDir()), nil
	case config.StorageRedis:
		return persist.NewRedis(ctx, persist.RedisOptions{
			URL:      cfg.Env.Redis.URL,
			Addr:     cfg.Env.Redis.Addr,
			Password: cfg.Env.Redis.Password,
			DB:       cfg.Env.Redis.DB,
		})
	case config.StorageMemory:
		return persist.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Storage)
	}
}
