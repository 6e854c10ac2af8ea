package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// durationSeconds parses env as time.Duration: "10s", "500ms" or a bare
// number of seconds.
type durationSeconds time.Duration

// SetValue implements cleanenv.Setter.
func (d *durationSeconds) SetValue(data string) error {
	v, err := parseDuration(data)
	if err != nil {
		return err
	}
	*d = durationSeconds(v)
	return nil
}

func (d durationSeconds) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 500ms or a number of seconds: %w", err)
	}
	return d, nil
}

// Env is the environment configuration.
type Env struct {
	Backend string `env:"TASKER_BACKEND" env-default:"mock"`
	Storage string `env:"TASKER_STORAGE" env-default:"file"`

	Mock  MockEnv
	HTTP  HTTPEnv
	PG    PGEnv
	Redis RedisEnv
}

// MockEnv configures the simulated backend.
type MockEnv struct {
	Delay     durationSeconds `env:"MOCK_DELAY" env-default:"500ms"`
	ErrorRate float64         `env:"MOCK_ERROR_RATE" env-default:"0.05"`
}

// HTTPEnv configures the API server.
type HTTPEnv struct {
	Addr         string          `env:"HTTP_ADDR" env-default:"127.0.0.1:8080"`
	ReadTimeout  durationSeconds `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout durationSeconds `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  durationSeconds `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// CORSOrigins is a comma separated list; empty allows any origin.
	CORSOrigins []string `env:"HTTP_CORS_ORIGINS" env-separator:","`
}

// PGEnv configures the postgres backend.
type PGEnv struct {
	DSN string `env:"PG_DSN"`
}

// RedisEnv configures redis storage. URL overrides Addr/Password/DB.
type RedisEnv struct {
	URL      string `env:"REDIS_URL"`
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("read env: %w", err)
	}
	if env.Mock.ErrorRate < 0 || env.Mock.ErrorRate > 1 {
		return Env{}, fmt.Errorf("MOCK_ERROR_RATE must be between 0 and 1, got %g", env.Mock.ErrorRate)
	}
	if env.Mock.Delay < 0 {
		return Env{}, fmt.Errorf("MOCK_DELAY must not be negative")
	}
	return env, nil
}
