// Package db provides PostgreSQL access to the jobs, leads and emails tables.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Table names
const (
	TableJobs   = "jobs"
	TableLeads  = "leads"
	TableEmails = "emails"
)

// ErrNotUpdated is returned when an UPDATE matched no row, either because the
// row does not exist or because it is already finalized
var ErrNotUpdated = errors.New("no row updated")

// StoreError wraps a failed store operation
type StoreError struct {
	Op    string
	Table string
	Cause error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store %s on %s failed: %v", e.Op, e.Table, e.Cause)
	}
	return fmt.Sprintf("store %s on %s failed", e.Op, e.Table)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
