package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
)

// GetTestDatabasePool creates a database connection pool for testing
func GetTestDatabasePool(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(BuildDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// BuildDatabaseURL returns DATABASE_URL or builds one from the POSTGRES_* variables
func BuildDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=prefer",
		getEnv("POSTGRES_USER", "postgres"),
		getEnv("POSTGRES_PASSWORD", "postgres"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "charter_test"),
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// TestDatabase provides database utilities for testing
type TestDatabase struct {
	Pool *pgxpool.Pool
	ctx  context.Context
}

// NewTestDatabase connects to the test database and makes sure the state
// table exists. The wizard keys are removed before and after the test.
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	pool, err := GetTestDatabasePool(ctx)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	db := &TestDatabase{
		Pool: pool,
		ctx:  ctx,
	}
	if err := db.Storage().EnsureSchema(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to create state table: %v", err)
	}

	db.CleanupKeys(t)
	t.Cleanup(func() { db.CleanupKeys(t) })
	return db
}

// Close closes the database connection
func (db *TestDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Storage returns a PostgresStorage over the test pool
func (db *TestDatabase) Storage() *state.PostgresStorage {
	return state.NewPostgresStorage(db.Pool)
}

// CleanupKeys removes the persisted wizard state
func (db *TestDatabase) CleanupKeys(t *testing.T) {
	for _, key := range []string{state.FormStorageKey, state.DocumentStorageKey} {
		if _, err := db.Pool.Exec(db.ctx, `DELETE FROM wizard_state WHERE key = $1`, key); err != nil {
			t.Logf("Warning: Failed to cleanup key %s: %v", key, err)
		}
	}
}

// RawValue returns the stored JSON for key, or "" when the row does not exist
func (db *TestDatabase) RawValue(t *testing.T, key string) string {
	var value string
	err := db.Pool.QueryRow(db.ctx, `SELECT value::text FROM wizard_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// GetRowCount returns the number of rows in the state table
func (db *TestDatabase) GetRowCount(t *testing.T) int {
	var count int
	if err := db.Pool.QueryRow(db.ctx, `SELECT COUNT(*) FROM wizard_state`).Scan(&count); err != nil {
		t.Fatalf("Failed to get row count: %v", err)
	}
	return count
}

// WaitForDatabase waits for database to be ready
func WaitForDatabase(ctx context.Context, maxAttempts int) error {
	for i := 0; i < maxAttempts; i++ {
		pool, err := GetTestDatabasePool(ctx)
		if err == nil {
			pool.Close()
			return nil
		}

		if i < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}

	return fmt.Errorf("database not ready after %d attempts", maxAttempts)
}
