package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// storeRetryAttempts bounds per-call retries on transient store errors. The
// keyword matcher issues one lookup per distinct keyword, so this must stay
// small to keep worst-case request latency bounded.
const storeRetryAttempts = 3

type PostgresStore struct {
	DB *sql.DB

	embeddingDims int
	agencyCache   *lru.Cache
	logger        *zap.Logger
}

func NewPostgresStore(connStr string, embeddingDims int, cacheSize int, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create agency cache: %w", err)
	}

	logger.Info("Successfully connected to the database")
	return &PostgresStore{
		DB:            db,
		embeddingDims: embeddingDims,
		agencyCache:   cache,
		logger:        logger,
	}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS agencies (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            level TEXT NOT NULL DEFAULT 'national',
            description TEXT DEFAULT '',
            website TEXT DEFAULT '',
            phone TEXT DEFAULT '',
            email TEXT DEFAULT '',
            social_media JSONB DEFAULT '{}'::jsonb,
            keywords TEXT[] DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS agency_keywords (
            keyword TEXT NOT NULL,
            agency_id TEXT NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
            PRIMARY KEY (keyword, agency_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_agency_keywords_keyword ON agency_keywords(keyword)`,
		`CREATE TABLE IF NOT EXISTS handle_cache (
            agency_name TEXT PRIMARY KEY,
            handle TEXT NOT NULL,
            status TEXT NOT NULL,
            cached_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS agency_embeddings (
            agency_id TEXT PRIMARY KEY REFERENCES agencies(id) ON DELETE CASCADE,
            embedding vector(%d) NOT NULL
        )`, s.embeddingDims),
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Ping reports whether the database connection is healthy.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}

// withRetry runs op with bounded exponential backoff on transient errors.
// Context cancellation and row-level conditions are never retried.
func (s *PostgresStore) withRetry(ctx context.Context, op func() error) error {
	return retry.Do(
		op,
		retry.Context(ctx),
		retry.Attempts(storeRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, sql.ErrNoRows) {
				return false
			}
			return ctx.Err() == nil
		}),
	)
}
