package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "aduan-agent/errors"

	"github.com/lib/pq"
)

// Agency is a government body that can receive complaints. Records are
// written by the ingestion path and read-only at match time; identifiers are
// globally unique and never reused.
type Agency struct {
	ID          string
	Name        string
	Level       string
	Description string
	Website     string
	Phone       string
	Email       string
	SocialMedia map[string]string
	Keywords    []string
}

// GetAgency fetches a full agency record by identifier. Records are immutable
// after ingestion, so hits are served from an in-process LRU cache.
func (s *PostgresStore) GetAgency(ctx context.Context, agencyID string) (*Agency, error) {
	if cached, ok := s.agencyCache.Get(agencyID); ok {
		return cached.(*Agency), nil
	}

	const query = `
        SELECT id, name, level, description, website, phone, email, social_media, keywords
        FROM agencies WHERE id = $1
    `

	var agency Agency
	var socialJSON []byte
	var keywords pq.StringArray
	err := s.withRetry(ctx, func() error {
		row := s.DB.QueryRowContext(ctx, query, agencyID)
		return row.Scan(&agency.ID, &agency.Name, &agency.Level, &agency.Description,
			&agency.Website, &agency.Phone, &agency.Email, &socialJSON, &keywords)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch agency %s: %w", apperrors.ErrDatabaseOperation, agencyID, err)
	}

	agency.Keywords = keywords
	agency.SocialMedia = map[string]string{}
	if len(socialJSON) > 0 {
		if err := json.Unmarshal(socialJSON, &agency.SocialMedia); err != nil {
			s.logger.Warn("Malformed social_media payload for agency, ignoring")
		}
	}

	s.agencyCache.Add(agencyID, &agency)
	return &agency, nil
}

// AgencyIDsForKeyword returns the identifiers of agencies registered under
// the given keyword, in stable store order. The join against agencies keeps
// stale index entries (keyword rows whose agency was removed) out of results.
func (s *PostgresStore) AgencyIDsForKeyword(ctx context.Context, keyword string) ([]string, error) {
	const query = `
        SELECT k.agency_id
        FROM agency_keywords k
        JOIN agencies a ON a.id = k.agency_id
        WHERE k.keyword = $1
        ORDER BY k.agency_id
    `

	var ids []string
	err := s.withRetry(ctx, func() error {
		rows, err := s.DB.QueryContext(ctx, query, keyword)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query keyword %q: %w", apperrors.ErrDatabaseOperation, keyword, err)
	}
	return ids, nil
}

// UpsertAgency writes an agency record and rebuilds its keyword index rows.
// Used by the ingestion path; the matcher never writes.
func (s *PostgresStore) UpsertAgency(ctx context.Context, agency *Agency) error {
	socialJSON, err := json.Marshal(agency.SocialMedia)
	if err != nil {
		return fmt.Errorf("failed to marshal social media for agency %s: %w", agency.ID, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
        INSERT INTO agencies (id, name, level, description, website, phone, email, social_media, keywords)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id)
        DO UPDATE SET name = EXCLUDED.name, level = EXCLUDED.level,
            description = EXCLUDED.description, website = EXCLUDED.website,
            phone = EXCLUDED.phone, email = EXCLUDED.email,
            social_media = EXCLUDED.social_media, keywords = EXCLUDED.keywords
    `
	if _, err := tx.ExecContext(ctx, upsert, agency.ID, agency.Name, agency.Level,
		agency.Description, agency.Website, agency.Phone, agency.Email,
		string(socialJSON), pq.Array(agency.Keywords)); err != nil {
		return fmt.Errorf("%w: failed to upsert agency %s: %w", apperrors.ErrDatabaseOperation, agency.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM agency_keywords WHERE agency_id = $1`, agency.ID); err != nil {
		return fmt.Errorf("%w: failed to clear keyword index for agency %s: %w", apperrors.ErrDatabaseOperation, agency.ID, err)
	}
	for _, kw := range agency.Keywords {
		if kw == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agency_keywords (keyword, agency_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			kw, agency.ID); err != nil {
			return fmt.Errorf("%w: failed to index keyword %q for agency %s: %w", apperrors.ErrDatabaseOperation, kw, agency.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.agencyCache.Remove(agency.ID)
	return nil
}
