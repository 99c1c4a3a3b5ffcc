package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aduan-agent/config"
	apperrors "aduan-agent/errors"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// Result is a single organic search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type searchRequest struct {
	Query string `json:"q"`
}

type searchResponse struct {
	Organic []Result `json:"organic"`
}

// searchRetryAttempts is deliberately lower than the LLM retry budget: a slow
// search degrades to NOT_FOUND, so burning the whole request timeout on it
// buys nothing.
const searchRetryAttempts = 3

// Client talks to a Serper-compatible search API. One instance is created at
// process start and reused across requests.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		endpoint:   cfg.SerperEndpoint,
		apiKey:     cfg.SerperAPIKey,
		httpClient: &http.Client{Timeout: cfg.SearchRequestTimeout},
		logger:     logger,
	}
}

// Search runs a web search and returns the organic results. Throttling and
// server errors are retried with bounded exponential backoff; once attempts
// are exhausted the error is returned and the caller treats it as no result.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	var results []Result
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("X-API-KEY", c.apiKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				return fmt.Errorf("%w: %v", apperrors.ErrServiceUnavailable, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read search response: %w", err)
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("%w: search server status %s", apperrors.ErrServiceUnavailable, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search server status %s: %s", resp.Status, string(body))
			}

			var sr searchResponse
			if err := json.Unmarshal(body, &sr); err != nil {
				return fmt.Errorf("decode search response: %w", err)
			}
			results = sr.Organic
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(searchRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(apperrors.IsServiceUnavailable),
	)
	if err != nil {
		c.logger.Warn("Web search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSearchCommunication, err)
	}
	return results, nil
}
