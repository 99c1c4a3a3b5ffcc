package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "aduan-agent/errors"
)

// CachedHandle is a previously resolved social handle for an agency name.
// Entries are only written for verified resolutions and are monotonically
// overwritten by fresher verified results; they are never expired.
type CachedHandle struct {
	AgencyName string
	Handle     string
	Status     string
	CachedAt   time.Time
}

// GetCachedHandle returns the cached handle for an agency name, or nil when
// no entry exists.
func (s *PostgresStore) GetCachedHandle(ctx context.Context, agencyName string) (*CachedHandle, error) {
	const query = `SELECT agency_name, handle, status, cached_at FROM handle_cache WHERE agency_name = $1`

	var rec CachedHandle
	err := s.withRetry(ctx, func() error {
		row := s.DB.QueryRowContext(ctx, query, agencyName)
		return row.Scan(&rec.AgencyName, &rec.Handle, &rec.Status, &rec.CachedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read handle cache for %q: %w", apperrors.ErrDatabaseOperation, agencyName, err)
	}
	return &rec, nil
}

// PutCachedHandle stores a resolved handle. Concurrent writers may race; last
// writer wins, which is acceptable because only verified results are written
// and they are idempotent per agency name.
func (s *PostgresStore) PutCachedHandle(ctx context.Context, agencyName, handle, status string) error {
	const query = `
        INSERT INTO handle_cache (agency_name, handle, status, cached_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (agency_name)
        DO UPDATE SET handle = EXCLUDED.handle, status = EXCLUDED.status, cached_at = NOW()
    `
	err := s.withRetry(ctx, func() error {
		_, err := s.DB.ExecContext(ctx, query, agencyName, handle, status)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to write handle cache for %q: %w", apperrors.ErrDatabaseOperation, agencyName, err)
	}
	return nil
}
