package matcher

import (
	"context"

	"aduan-agent/database"

	"go.uber.org/zap"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the k nearest agencies for an embedding vector.
type VectorIndex interface {
	NearestAgencies(ctx context.Context, vector []float32, k int) ([]database.VectorHit, error)
}

// VectorMatcher is the second matching tier, invoked only when the keyword
// matcher produced nothing.
type VectorMatcher struct {
	embedder Embedder
	index    VectorIndex
	logger   *zap.Logger
}

func NewVectorMatcher(embedder Embedder, index VectorIndex, logger *zap.Logger) *VectorMatcher {
	return &VectorMatcher{embedder: embedder, index: index, logger: logger}
}

// Match embeds the complaint and maps the index's nearest hits directly to
// matches, keeping the index-reported similarity score. If the embedding
// oracle or the index fails, the result is empty and the request proceeds
// without agency suggestions.
func (m *VectorMatcher) Match(ctx context.Context, complaint string, k int) []Match {
	vector, err := m.embedder.Embed(ctx, complaint)
	if err != nil || len(vector) == 0 {
		m.logger.Warn("Could not generate embedding for complaint, skipping vector fallback",
			zap.Error(err))
		return nil
	}

	hits, err := m.index.NearestAgencies(ctx, vector, k)
	if err != nil {
		m.logger.Warn("Vector index query failed, skipping vector fallback", zap.Error(err))
		return nil
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, Match{
			ID:          hit.AgencyID,
			Name:        hit.Name,
			Description: hit.Description,
			Score:       hit.Score,
			SocialMedia: hit.SocialMedia,
			Website:     hit.Website,
			Phone:       hit.Phone,
			Email:       hit.Email,
		})
	}
	return matches
}
