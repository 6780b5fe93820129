package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sqlc-dev/pqtype"
)

// PostgresSchema creates the key/value table. The seed tool applies it; the
// store also applies it on open.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS courtclock_kv (
    key        TEXT PRIMARY KEY,
    value      JSONB,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore keeps values in a JSONB column. Expects a *sql.DB opened with
// the lib/pq driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value pqtype.NullRawMessage
	err := s.db.QueryRowContext(ctx, `SELECT value FROM courtclock_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if !value.Valid {
		return "null", nil
	}
	return string(value.RawMessage), nil
}

// Set stores value, which must be a JSON document.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("set %s: value is not valid JSON", key)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courtclock_kv (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, pqtype.NullRawMessage{RawMessage: json.RawMessage(value), Valid: true},
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
