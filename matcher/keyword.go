package matcher

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"aduan-agent/database"
	apperrors "aduan-agent/errors"

	"go.uber.org/zap"
)

// minKeywordLength excludes short stop-words from matching. Tokens must be
// strictly longer than this to count as keywords; no stemming is applied.
const minKeywordLength = 3

// Match is a ranked agency suggestion for a complaint. Score is a per-request
// confidence heuristic, not a probability, and is never persisted.
type Match struct {
	ID          string
	Name        string
	Description string
	Score       float64
	SocialMedia map[string]string
	Website     string
	Phone       string
	Email       string
}

// AgencyStore is the durable keyword index consumed by the keyword matcher.
type AgencyStore interface {
	AgencyIDsForKeyword(ctx context.Context, keyword string) ([]string, error)
	GetAgency(ctx context.Context, agencyID string) (*database.Agency, error)
}

// KeywordMatcher ranks agencies by how many distinct complaint keywords
// reference them in the keyword index.
type KeywordMatcher struct {
	store  AgencyStore
	logger *zap.Logger
}

func NewKeywordMatcher(store AgencyStore, logger *zap.Logger) *KeywordMatcher {
	return &KeywordMatcher{store: store, logger: logger}
}

// Match tokenizes the complaint and returns up to k agencies ranked by hit
// count. It never fails: store errors are swallowed per keyword and an empty
// result signals the caller to fall back to vector matching.
//
// Ties on hit count break by first-seen order: the order in which an agency
// first appeared while processing keywords in complaint order. This is pinned
// behavior that tests rely on, not incidental map iteration.
func (m *KeywordMatcher) Match(ctx context.Context, complaint string, k int) []Match {
	keywords := extractKeywords(complaint)
	if len(keywords) == 0 {
		return nil
	}

	hits := make(map[string]int)
	var firstSeen []string
	for _, keyword := range keywords {
		ids, err := m.store.AgencyIDsForKeyword(ctx, keyword)
		if err != nil {
			// One bad lookup never sinks the whole request
			m.logger.Warn("Keyword lookup failed, treating as zero hits",
				zap.String("keyword", keyword), zap.Error(err))
			continue
		}
		for _, id := range ids {
			if _, seen := hits[id]; !seen {
				firstSeen = append(firstSeen, id)
			}
			hits[id]++
		}
	}

	if len(hits) == 0 {
		return nil
	}

	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return hits[ranked[i]] > hits[ranked[j]]
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}

	matches := make([]Match, 0, len(ranked))
	for _, id := range ranked {
		agency, err := m.store.GetAgency(ctx, id)
		if err != nil {
			// A record fetch failure drops the agency, not the response
			if apperrors.IsNotFound(err) {
				m.logger.Debug("Matched agency no longer exists, dropping from results",
					zap.String("agency_id", id))
			} else {
				m.logger.Warn("Failed to fetch matched agency, dropping from results",
					zap.String("agency_id", id), zap.Error(err))
			}
			continue
		}
		matches = append(matches, Match{
			ID:          agency.ID,
			Name:        agency.Name,
			Description: agency.Description,
			Score:       float64(hits[id]) / float64(len(keywords)),
			SocialMedia: agency.SocialMedia,
			Website:     agency.Website,
			Phone:       agency.Phone,
			Email:       agency.Email,
		})
	}
	return matches
}

// extractKeywords lowercases the complaint, splits on whitespace, drops short
// tokens, and de-duplicates while preserving first-seen order. Length is
// counted in runes so multibyte characters do not inflate a token past the
// stop-word filter.
func extractKeywords(complaint string) []string {
	tokens := strings.Fields(strings.ToLower(complaint))
	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, token := range tokens {
		if utf8.RuneCountInString(token) <= minKeywordLength || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}
