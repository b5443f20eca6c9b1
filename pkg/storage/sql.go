package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/sgmr/pkg/lifecycle"
	"github.com/JaimeStill/sgmr/pkg/repository"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type dialect struct {
	name   string
	create string
	get    string
	exists string
}

var (
	sqliteDialect = dialect{
		name:   BackendSQLite,
		create: "INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING",
		get:    "SELECT value FROM records WHERE key = ?",
		exists: "SELECT EXISTS (SELECT 1 FROM records WHERE key = ?)",
	}
	postgresDialect = dialect{
		name:   BackendPostgres,
		create: "INSERT INTO records (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING",
		get:    "SELECT value FROM records WHERE key = $1",
		exists: "SELECT EXISTS (SELECT 1 FROM records WHERE key = $1)",
	}
)

type sqlStore struct {
	db      *sql.DB
	dialect dialect
	owned   bool
	ready   atomic.Bool
	logger  *slog.Logger
}

// NewSQLite opens an embedded SQLite database at path and ensures the
// records table exists. The store owns the connection and closes it on shutdown.
func NewSQLite(path string, logger *slog.Logger) (System, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}

	s := &sqlStore{
		db:      db,
		dialect: sqliteDialect,
		owned:   true,
		logger:  logger.With("system", "storage", "backend", BackendSQLite),
	}
	s.ready.Store(true)
	return s, nil
}

// NewPostgres creates a store over an existing PostgreSQL connection pool.
// The records table is provisioned by cmd/migrate.
func NewPostgres(db *sql.DB, logger *slog.Logger) System {
	return &sqlStore{
		db:      db,
		dialect: postgresDialect,
		logger:  logger.With("system", "storage", "backend", BackendPostgres),
	}
}

func (s *sqlStore) Start(lc *lifecycle.Coordinator) error {
	lc.AddReadiness("storage", s.ready.Load)

	if !s.owned {
		lc.OnStartup(func() {
			ctx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
			defer cancel()

			var n int
			if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE false").Scan(&n); err != nil {
				s.logger.Error("records table unavailable", "error", err)
				return
			}
			s.ready.Store(true)
			s.logger.Info("sql storage ready")
		})
		return nil
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.ready.Store(false)
		if err := s.db.Close(); err != nil {
			s.logger.Error("sqlite close failed", "error", err)
			return
		}
		s.logger.Info("sqlite closed")
	})

	return nil
}

func (s *sqlStore) Create(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := repository.InsertOnce(ctx, s.db, s.dialect.create, key, data)
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrExists
	}
	return err
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err := repository.SelectOne(ctx, s.db, &data, s.dialect.get, key)
	if errors.Is(err, repository.ErrNoRecord) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *sqlStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	return repository.Exists(ctx, s.db, s.dialect.exists, key)
}
