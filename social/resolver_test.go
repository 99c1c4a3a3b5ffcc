package social

import (
	"context"
	"errors"
	"testing"

	"aduan-agent/database"
	"aduan-agent/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCache struct {
	entries  map[string]*database.CachedHandle
	getErr   error
	putCalls int
	getCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*database.CachedHandle{}}
}

func (f *fakeCache) GetCachedHandle(_ context.Context, name string) (*database.CachedHandle, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[name], nil
}

func (f *fakeCache) PutCachedHandle(_ context.Context, name, handle, status string) error {
	f.putCalls++
	f.entries[name] = &database.CachedHandle{AgencyName: name, Handle: handle, Status: status}
	return nil
}

type fakeSearcher struct {
	results []websearch.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string) ([]websearch.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeGenerator struct {
	output string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ int) (string, error) {
	f.calls++
	return f.output, f.err
}

func someResults() []websearch.Result {
	return []websearch.Result{
		{Title: "Kementerian PUPR (@KemenPU) / X", Snippet: "Official account", Link: "https://x.com/KemenPU"},
	}
}

func TestResolveCacheHitSkipsOracles(t *testing.T) {
	cache := newFakeCache()
	cache.entries["Kementerian PUPR"] = &database.CachedHandle{
		AgencyName: "Kementerian PUPR", Handle: "@KemenPU", Status: StatusVerified,
	}
	search := &fakeSearcher{}
	llm := &fakeGenerator{}
	r := NewResolver(cache, search, llm, zap.NewNop())

	got := r.Resolve(context.Background(), "Kementerian PUPR")

	assert.Equal(t, HandleInfo{Handle: "@KemenPU", Status: StatusVerified}, got)
	assert.Zero(t, search.calls)
	assert.Zero(t, llm.calls)
}

func TestResolveHighConfidencePersistsAndCachesForNextCall(t *testing.T) {
	cache := newFakeCache()
	search := &fakeSearcher{results: someResults()}
	llm := &fakeGenerator{output: `{"handle": "@KemenPU", "confidence": "high"}`}
	r := NewResolver(cache, search, llm, zap.NewNop())

	first := r.Resolve(context.Background(), "Kementerian PUPR")
	require.Equal(t, HandleInfo{Handle: "@KemenPU", Status: StatusVerified}, first)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, 1, cache.putCalls)

	// Second call is served from the cache: no further oracle calls
	second := r.Resolve(context.Background(), "Kementerian PUPR")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, 1, llm.calls)
}

func TestResolveMediumConfidenceNotPersisted(t *testing.T) {
	cache := newFakeCache()
	search := &fakeSearcher{results: someResults()}
	llm := &fakeGenerator{output: `{"handle": "@KemenPU", "confidence": "medium"}`}
	r := NewResolver(cache, search, llm, zap.NewNop())

	got := r.Resolve(context.Background(), "Kementerian PUPR")

	assert.Equal(t, HandleInfo{Handle: "@KemenPU", Status: StatusUnverified}, got)
	assert.Zero(t, cache.putCalls, "unverified results must never reach the cache")
}

func TestResolveLowAndNoneConfidenceNotPersisted(t *testing.T) {
	for _, confidence := range []string{"low", "none", "garbage"} {
		t.Run(confidence, func(t *testing.T) {
			cache := newFakeCache()
			search := &fakeSearcher{results: someResults()}
			llm := &fakeGenerator{output: `{"handle": "@Maybe", "confidence": "` + confidence + `"}`}
			r := NewResolver(cache, search, llm, zap.NewNop())

			got := r.Resolve(context.Background(), "Kementerian PUPR")

			assert.Equal(t, HandleInfo{Handle: HandleNotFound, Status: StatusNone}, got)
			assert.Zero(t, cache.putCalls)
		})
	}
}

func TestResolveNoSearchResults(t *testing.T) {
	cache := newFakeCache()
	search := &fakeSearcher{results: nil}
	llm := &fakeGenerator{}
	r := NewResolver(cache, search, llm, zap.NewNop())

	got := r.Resolve(context.Background(), "Kementerian PUPR")

	assert.Equal(t, HandleInfo{Handle: HandleNotFound, Status: StatusNone}, got)
	assert.Zero(t, llm.calls, "extraction must not run without search results")
}

func TestResolveSearchFailure(t *testing.T) {
	cache := newFakeCache()
	search := &fakeSearcher{err: errors.New("search provider down")}
	llm := &fakeGenerator{}
	r := NewResolver(cache, search, llm, zap.NewNop())

	got := r.Resolve(context.Background(), "Kementerian PUPR")

	assert.Equal(t, HandleInfo{Handle: HandleNotFound, Status: StatusNone}, got)
}

func TestResolveMalformedExtractionOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"no_json", "I could not find anything useful."},
		{"invalid_json", "{handle: @KemenPU}"},
		{"missing_handle_field", `{"confidence": "high"}`},
		{"blank_handle", `{"handle": "   ", "confidence": "high"}`},
		{"not_found_sentinel", `{"handle": "NOT_FOUND", "confidence": "none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeCache()
			search := &fakeSearcher{results: someResults()}
			llm := &fakeGenerator{output: tt.output}
			r := NewResolver(cache, search, llm, zap.NewNop())

			got := r.Resolve(context.Background(), "Kementerian PUPR")

			assert.Equal(t, HandleInfo{Handle: HandleNotFound, Status: StatusNone}, got)
			assert.Zero(t, cache.putCalls)
		})
	}
}

func TestResolveCacheReadFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("cache unavailable")
	search := &fakeSearcher{results: someResults()}
	llm := &fakeGenerator{output: `{"handle": "@KemenPU", "confidence": "high"}`}
	r := NewResolver(cache, search, llm, zap.NewNop())

	got := r.Resolve(context.Background(), "Kementerian PUPR")

	assert.Equal(t, HandleInfo{Handle: "@KemenPU", Status: StatusVerified}, got)
	assert.Equal(t, 1, search.calls)
}
