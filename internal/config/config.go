// Package config handles the XDG configuration directory, file paths and
// environment settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "tasker"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// StateDirName is the subdirectory holding file storage.
	StateDirName = "state"
)

// Backends.
const (
	BackendMock     = "mock"
	BackendGoogle   = "google"
	BackendPostgres = "postgres"
)

// Storage kinds.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the service implementation.
	Backend string

	// Storage selects where client state is persisted.
	Storage string

	// Env holds settings read from the environment.
	Env Env
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasker or $HOME/.config/tasker.
// Backend and storage default to the environment values.
func New(configDir string) (*Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		Backend: env.Backend,
		Storage: env.Storage,
		Env:     env,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Validate checks the backend and storage selections.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMock, BackendGoogle, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend: %s (want mock, google or postgres)", c.Backend)
	}
	switch c.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage: %s (want file, redis or memory)", c.Storage)
	}
	return nil
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// StateDir returns the directory used by file storage.
func (c *Config) StateDir() string {
	return filepath.Join(c.Dir, StateDirName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// RemoveState deletes the file storage directory and everything in it.
func (c *Config) RemoveState() error {
	return os.RemoveAll(c.StateDir())
}
