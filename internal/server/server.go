// Package server exposes the task store over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"tasker/internal/store"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Options configures the API server.
type Options struct {
	Version string

	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string

	// AccessLog enables gin's request logger.
	AccessLog bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Log logr.Logger
}

// NewRouter returns the gin engine serving st.
func NewRouter(st *store.Store, opts Options) *gin.Engine {
	r := gin.New()
	if opts.AccessLog {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	h := &handler{st: st, log: opts.Log.WithName("server")}
	setup(r, h, opts)
	return r
}

func setup(r *gin.Engine, h *handler, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": opts.Version})
	})

	api := r.Group("/api/v1")

	api.GET("/tasks", h.listTasks)
	api.POST("/tasks", h.createTask)
	api.POST("/tasks/refresh", h.refresh)
	api.GET("/tasks/:id", h.getTask)
	api.PATCH("/tasks/:id", h.updateTask)
	api.DELETE("/tasks/:id", h.deleteTask)

	api.GET("/filters", h.getFilters)
	api.PUT("/filters", h.putFilters)
	api.DELETE("/filters", h.clearFilters)

	api.GET("/preferences", h.getPreferences)
	api.PUT("/preferences", h.putPreferences)

	api.GET("/state", h.getState)
	api.DELETE("/state/error", h.clearError)
}

// Run serves st on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, st *store.Store, opts Options) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(st, opts),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		opts.Log.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	opts.Log.Info("HTTP server stopped")
	return nil
}
