// Package database owns the PostgreSQL pool used by the postgres case
// store. The pool is opened lazily and verified during lifecycle startup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/sgmr/pkg/lifecycle"
)

// retryInterval spaces startup pings while the server comes up alongside
// its database.
const retryInterval = 500 * time.Millisecond

// System exposes the pool and registers it with the lifecycle.
type System interface {
	Connection() *sql.DB
	// Start pings until ConnTimeout elapses and reports ready on success.
	// The pool is closed on shutdown.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	pool    *sql.DB
	timeout time.Duration
	ready   atomic.Bool
	logger  *slog.Logger
}

// New configures a pgx-backed pool without connecting.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		pool:    pool,
		timeout: cfg.ConnTimeoutDuration(),
		logger:  logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.pool
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.AddReadiness("database", d.ready.Load)
	lc.OnStartup(func() { d.connect(lc.Context()) })
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)
		if err := d.pool.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed")
	})
	return nil
}

func (d *database) connect(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := d.pool.PingContext(ctx)
		if err == nil {
			d.ready.Store(true)
			d.logger.Info("database connected", "attempts", attempt)
			return
		}

		select {
		case <-ctx.Done():
			d.logger.Error("database unreachable", "attempts", attempt, "error", err)
			return
		case <-time.After(retryInterval):
		}
	}
}
