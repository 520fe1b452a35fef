// Package pg provides core PostgreSQL database primitives for storage layers.
//
// Core Components:
//   - Querier: Interface for transaction-agnostic database operations
//   - WithTx: Helper for managing database transactions
//   - WithSavepoint: Isolates a step whose failure must not abort the surrounding transaction
//   - Connect: Configurable database connection establishment
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/itchan-dev/forum/shared/config"
	"github.com/lib/pq"
)

// =========================================================================
// Core Interfaces
// =========================================================================

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same query code
// runs on the pool or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =========================================================================
// Connection Management
// =========================================================================

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns pool settings suitable for the API server.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// DSN builds the lib/pq connection string from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port,
		cfg.Private.Pg.User, cfg.Private.Pg.Password,
		cfg.Private.Pg.Dbname)
}

// Connect opens the pool and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg *config.Config, connCfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// =========================================================================
// Transaction Helpers
// =========================================================================

// WithTx executes fn within a transaction. An error from fn rolls back,
// otherwise the transaction is committed.
//
// Usage:
//
//	err := pg.WithTx(ctx, db, func(tx *sql.Tx) error {
//	    if err := someOperation(ctx, tx, data); err != nil {
//	        return err // Triggers rollback
//	    }
//	    return nil // Triggers commit
//	})
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if transaction is already committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithSavepoint runs fn inside a named savepoint of tx. When fn fails the
// savepoint is rolled back and the transaction stays usable; fn's error is
// returned unchanged.
func WithSavepoint(ctx context.Context, tx *sql.Tx, name string, fn func() error) error {
	ident := pq.QuoteIdentifier(name)
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+ident); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+ident); rbErr != nil {
			return fmt.Errorf("failed to roll back to savepoint %s: %w (original error: %v)", name, rbErr, err)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+ident); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}
