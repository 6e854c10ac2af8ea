// Package postgres implements service.Service on a PostgreSQL table.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/task"
)

// QueryTimeout bounds every query.
const QueryTimeout = 5 * time.Second

//go:embed migrations/*.sql
var migrations embed.FS

const columns = `id, title, description, status, created_at, updated_at`

// Client implements service.Service.
type Client struct {
	db    *pgxpool.Pool
	log   logr.Logger
	newID func() string
}

// New connects to dsn, applies pending migrations and returns a client.
func New(ctx context.Context, dsn string, log logr.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("PG_DSN is required for the postgres backend")
	}
	log = log.WithName("postgres")

	if err := Migrate(ctx, dsn, log); err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewWithPool(pool, log), nil
}

// NewWithPool wraps an existing pool. Migrations are not run.
func NewWithPool(pool *pgxpool.Pool, log logr.Logger) *Client {
	return &Client{db: pool, log: log, newID: uuid.NewString}
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded migrations to dsn.
func Migrate(ctx context.Context, dsn string, log logr.Logger) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log, exit: os.Exit})
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to logr. Fatalf logs and exits with the
// backend error code.
type gooseLogger struct {
	log  logr.Logger
	exit func(code int)
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.V(1).Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Errorf(format, v...), "migration failed")
	l.exit(exitcode.BackendError)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t      task.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// wrapError maps pgx errors to service errors.
func wrapError(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("task %w: %s", service.ErrNotFound, id)
	}
	return err
}

// ListTasks returns every task in creation order.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := c.db.Query(ctx, `SELECT `+columns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CreateTask inserts a task with a new UUID.
func (c *Client) CreateTask(ctx context.Context, data task.FormData) (task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	query := `
		INSERT INTO tasks (id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	t, err := scanTask(c.db.QueryRow(ctx, query, c.newID(), data.Title, data.Description, string(data.Status)))
	if err != nil {
		return task.Task{}, err
	}
	c.log.V(1).Info("created", "id", t.ID)
	return t, nil
}

// UpdateTask applies the set fields of patch. updated_at never moves backwards.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	query := `
		UPDATE tasks SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			updated_at  = GREATEST(updated_at, date_trunc('milliseconds', now()))
		WHERE id = $1
		RETURNING ` + columns
	t, err := scanTask(c.db.QueryRow(ctx, query, id, patch.Title, patch.Description, status))
	if err != nil {
		return task.Task{}, wrapError(err, id)
	}
	return t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	tag, err := c.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %w: %s", service.ErrNotFound, id)
	}
	return nil
}

// Close releases the pool.
func (c *Client) Close() error {
	c.db.Close()
	return nil
}
