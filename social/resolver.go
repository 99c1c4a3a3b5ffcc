package social

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"aduan-agent/database"
	"aduan-agent/prompts"
	"aduan-agent/websearch"

	"go.uber.org/zap"
)

// HandleNotFound is the sentinel handle value for unresolved lookups.
const HandleNotFound = "NOT_FOUND"

// Handle resolution statuses. Only verified results are ever persisted;
// everything else is recomputed on each request so a wrong guess can never
// poison the cache permanently.
const (
	StatusVerified   = "verified"
	StatusUnverified = "unverified"
	StatusNone       = "none"
)

const maxSearchSnippets = 5

// HandleInfo is the outcome of a handle resolution.
type HandleInfo struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// Cache is the durable handle cache consumed by the resolver.
type Cache interface {
	GetCachedHandle(ctx context.Context, agencyName string) (*database.CachedHandle, error)
	PutCachedHandle(ctx context.Context, agencyName, handle, status string) error
}

// Searcher runs a web search for handle candidates.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// TextGenerator produces prose from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Resolver finds an agency's official X/Twitter handle with a cache-aside
// lookup: check the durable cache, on miss search the web and ask the model
// to extract a handle with a confidence level, then persist only verified
// results.
type Resolver struct {
	cache  Cache
	search Searcher
	llm    TextGenerator
	logger *zap.Logger
}

func NewResolver(cache Cache, search Searcher, llm TextGenerator, logger *zap.Logger) *Resolver {
	return &Resolver{cache: cache, search: search, llm: llm, logger: logger}
}

type extractionResult struct {
	Handle     string `json:"handle"`
	Confidence string `json:"confidence"`
}

// Resolve returns the agency's handle and its verification status. It never
// fails: every upstream error degrades to {NOT_FOUND, none}.
func (r *Resolver) Resolve(ctx context.Context, agencyName string) HandleInfo {
	cached, err := r.cache.GetCachedHandle(ctx, agencyName)
	if err != nil {
		r.logger.Warn("Handle cache read failed, resolving from scratch",
			zap.String("agency", agencyName), zap.Error(err))
	}
	if cached != nil {
		r.logger.Debug("Handle cache hit", zap.String("agency", agencyName))
		return HandleInfo{Handle: cached.Handle, Status: cached.Status}
	}

	query := fmt.Sprintf("%s official twitter X handle", agencyName)
	results, err := r.search.Search(ctx, query)
	if err != nil || len(results) == 0 {
		return HandleInfo{Handle: HandleNotFound, Status: StatusNone}
	}

	extracted := r.extractHandle(ctx, agencyName, results)
	handle := strings.TrimSpace(extracted.Handle)
	if handle == "" || handle == HandleNotFound {
		return HandleInfo{Handle: HandleNotFound, Status: StatusNone}
	}

	switch extracted.Confidence {
	case "high":
		if err := r.cache.PutCachedHandle(ctx, agencyName, handle, StatusVerified); err != nil {
			r.logger.Warn("Failed to cache verified handle",
				zap.String("agency", agencyName), zap.Error(err))
		}
		return HandleInfo{Handle: handle, Status: StatusVerified}
	case "medium":
		// Plausible but unconfirmed: returned to the caller, never cached
		return HandleInfo{Handle: handle, Status: StatusUnverified}
	default:
		return HandleInfo{Handle: HandleNotFound, Status: StatusNone}
	}
}

// extractHandle formats the top organic results into the extraction prompt
// and parses the model's JSON answer defensively.
func (r *Resolver) extractHandle(ctx context.Context, agencyName string, results []websearch.Result) extractionResult {
	notFound := extractionResult{Handle: HandleNotFound, Confidence: "none"}

	if len(results) > maxSearchSnippets {
		results = results[:maxSearchSnippets]
	}
	formatted := make([]string, 0, len(results))
	for _, res := range results {
		formatted = append(formatted, fmt.Sprintf("Title: %s\nSnippet: %s\nLink: %s",
			res.Title, res.Snippet, res.Link))
	}

	prompt := fmt.Sprintf(prompts.HandleExtraction(), agencyName, strings.Join(formatted, "\n\n"))
	raw, err := r.llm.Generate(ctx, prompt, 256)
	if err != nil {
		r.logger.Warn("Handle extraction call failed",
			zap.String("agency", agencyName), zap.Error(err))
		return notFound
	}

	span, ok := FirstJSONObject(raw)
	if !ok {
		r.logger.Warn("No valid JSON object in handle extraction output",
			zap.String("agency", agencyName))
		return notFound
	}

	var result extractionResult
	if err := json.Unmarshal(span, &result); err != nil {
		return notFound
	}
	if result.Handle == "" {
		return notFound
	}
	if result.Confidence == "" {
		result.Confidence = "none"
	}
	return result
}
