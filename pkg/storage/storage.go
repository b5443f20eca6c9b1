// Package storage provides an append-only key-value record store. Every
// backend implements Create as an atomic create-if-absent so concurrent
// writers can never overwrite one another.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/sgmr/pkg/database"
	"github.com/JaimeStill/sgmr/pkg/lifecycle"
)

// Backend names accepted by Config.Backend.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendAzure    = "azure"
)

// System manages record storage and lifecycle coordination.
type System interface {
	// Start registers startup, readiness, and shutdown hooks.
	Start(lc *lifecycle.Coordinator) error
	// Create stores data at key. Returns ErrExists if a record is already
	// present; the existing record is left untouched.
	Create(ctx context.Context, key string, data []byte) error
	// Get returns the record at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether a record is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Backend. db is required
// only for the postgres backend.
func New(cfg *Config, db database.System, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendFile:
		return NewFile(cfg.File.Dir, logger)
	case BackendSQLite:
		return NewSQLite(cfg.SQLite.Path, logger)
	case BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database system")
		}
		return NewPostgres(db.Connection(), logger), nil
	case BackendRedis:
		return NewRedis(&cfg.Redis, logger), nil
	case BackendAzure:
		return NewAzure(&cfg.Azure, logger)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "\\") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
