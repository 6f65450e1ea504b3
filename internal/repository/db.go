package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RetryPolicy bounds how often a database connection attempt is retried
// before giving up.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy returns the connection retry policy used in production.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second}
}

// Open creates a Postgres connection pool, retrying the initial connection
// according to the given policy. Retries apply only to connection
// establishment; statements are never retried.
func Open(dsn string, policy RetryPolicy) (*sql.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		db, err := sql.Open("pgx", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(5)
				db.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
			db.Close()
		}

		lastErr = err
		if attempt < policy.MaxAttempts {
			slog.Warn("database connection failed, retrying", "attempt", attempt, "error", err)
			time.Sleep(policy.Backoff)
		}
	}

	return nil, fmt.Errorf("connecting to database after %d attempts: %w", policy.MaxAttempts, lastErr)
}
