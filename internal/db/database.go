package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"
)

type Database struct {
	*sql.DB
}

// ConnectOptions controls pool sizing and how long New keeps retrying the
// first ping while Postgres starts up.
type ConnectOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingAttempts    uint64
	PingBackoff     time.Duration
}

func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		PingAttempts:    5,
		PingBackoff:     500 * time.Millisecond,
	}
}

func New(ctx context.Context, connectionString string, opts ConnectOptions) (*Database, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := PingWithRetry(ctx, db, opts.PingAttempts, opts.PingBackoff); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "connected to database")
	return &Database{db}, nil
}

// PingWithRetry pings db with exponential backoff, giving up after attempts
// retries.
func PingWithRetry(ctx context.Context, db *sql.DB, attempts uint64, backoff time.Duration) error {
	b := retry.WithMaxRetries(attempts, retry.NewExponential(backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (db *Database) Close() error {
	return db.DB.Close()
}
