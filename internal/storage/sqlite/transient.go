package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// Get returns the transient stored under name unless it has expired.
// Read errors are logged and reported as a miss.
func (s *Store) Get(ctx context.Context, name string) ([]byte, bool) {
	var val []byte
	err := s.read.QueryRowContext(ctx,
		`SELECT value FROM transients WHERE name=? AND expires_at > ?`,
		name, s.now().UnixMilli(),
	).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.WarnContext(ctx, "transient read failed", "name", name, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set upserts a transient that expires after ttl.
func (s *Store) Set(ctx context.Context, name string, val []byte, ttl time.Duration) {
	now := s.now()
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO transients (name, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value=excluded.value,
		   expires_at=excluded.expires_at, updated_at=excluded.updated_at`,
		name, val, now.Add(ttl).UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		slog.WarnContext(ctx, "transient write failed", "name", name, "error", err)
	}
}

// Delete removes a transient.
func (s *Store) Delete(ctx context.Context, name string) {
	if _, err := s.write.ExecContext(ctx, `DELETE FROM transients WHERE name=?`, name); err != nil {
		slog.WarnContext(ctx, "transient delete failed", "name", name, "error", err)
	}
}

// Purge removes every transient.
func (s *Store) Purge(ctx context.Context) {
	if _, err := s.write.ExecContext(ctx, `DELETE FROM transients`); err != nil {
		slog.WarnContext(ctx, "transient purge failed", "error", err)
	}
}

// DeleteExpired removes transients whose deadline has passed and returns how
// many rows were dropped.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.write.ExecContext(ctx,
		`DELETE FROM transients WHERE expires_at <= ?`, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
