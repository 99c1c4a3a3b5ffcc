package database

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "aduan-agent/errors"

	"github.com/pgvector/pgvector-go"
)

// VectorHit is one nearest-neighbor result from the embedding index, joined
// with the owning agency record so stale vectors never surface.
type VectorHit struct {
	AgencyID    string
	Name        string
	Description string
	Score       float64
	SocialMedia map[string]string
	Website     string
	Phone       string
	Email       string
}

// NearestAgencies returns the k agencies whose embeddings are closest to the
// query vector by cosine distance. Score is the raw cosine similarity as
// reported by the index, without re-normalization.
func (s *PostgresStore) NearestAgencies(ctx context.Context, vector []float32, k int) ([]VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	const query = `
        SELECT a.id, a.name, a.description, a.website, a.phone, a.email, a.social_media,
               1 - (e.embedding <=> $1) AS score
        FROM agency_embeddings e
        JOIN agencies a ON a.id = e.agency_id
        ORDER BY e.embedding <=> $1
        LIMIT $2
    `

	var hits []VectorHit
	err := s.withRetry(ctx, func() error {
		rows, err := s.DB.QueryContext(ctx, query, pgvector.NewVector(vector), k)
		if err != nil {
			return err
		}
		defer rows.Close()

		hits = hits[:0]
		for rows.Next() {
			var hit VectorHit
			var socialJSON []byte
			if err := rows.Scan(&hit.AgencyID, &hit.Name, &hit.Description,
				&hit.Website, &hit.Phone, &hit.Email, &socialJSON, &hit.Score); err != nil {
				return err
			}
			hit.SocialMedia = map[string]string{}
			if len(socialJSON) > 0 {
				if err := json.Unmarshal(socialJSON, &hit.SocialMedia); err != nil {
					s.logger.Warn("Malformed social_media payload in vector hit, ignoring")
				}
			}
			hits = append(hits, hit)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query agency embeddings: %w", apperrors.ErrDatabaseOperation, err)
	}
	return hits, nil
}

// UpsertAgencyEmbedding stores or replaces the embedding for an agency.
func (s *PostgresStore) UpsertAgencyEmbedding(ctx context.Context, agencyID string, vector []float32) error {
	const query = `
        INSERT INTO agency_embeddings (agency_id, embedding)
        VALUES ($1, $2)
        ON CONFLICT (agency_id)
        DO UPDATE SET embedding = EXCLUDED.embedding
    `
	if _, err := s.DB.ExecContext(ctx, query, agencyID, pgvector.NewVector(vector)); err != nil {
		return fmt.Errorf("%w: failed to upsert embedding for agency %s: %w", apperrors.ErrDatabaseOperation, agencyID, err)
	}
	return nil
}
