// Package repository holds the database/sql calls behind the SQL record
// stores. Records are write-once: inserts never overwrite and lookups
// return exactly one row.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Outcome errors returned in place of driver-specific ones.
var (
	ErrNoRecord  = errors.New("no record")
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// InsertOnce runs an insert written with ON CONFLICT DO NOTHING. Zero
// affected rows, or a unique violation from a driver that raised one
// anyway, report ErrDuplicate.
func InsertOnce(ctx context.Context, db DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// SelectOne scans the single row produced by query into dest, reporting
// ErrNoRecord when there is none.
func SelectOne(ctx context.Context, db DB, dest any, query string, args ...any) error {
	err := db.QueryRowContext(ctx, query, args...).Scan(dest)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRecord
	}
	return err
}

// Exists runs a SELECT EXISTS query.
func Exists(ctx context.Context, db DB, query string, args ...any) (bool, error) {
	var ok bool
	if err := SelectOne(ctx, db, &ok, query, args...); err != nil {
		return false, err
	}
	return ok, nil
}
