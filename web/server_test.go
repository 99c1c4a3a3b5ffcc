package web

import (
	"context"
	"net"
	"testing"
	"time"

	"aduan-agent/config"
	"aduan-agent/database"
	"aduan-agent/pipeline"
	"aduan-agent/social"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{RateLimitPerMinute: 60, RateLimitBurstSize: 5}
	p := pipeline.New(nil, nil, nil, nil, 3, logger)
	resolver := social.NewResolver(nil, nil, nil, logger)
	return NewServer(p, resolver, &database.PostgresStore{}, logger, cfg)
}

func TestStartReturnsErrorWhenAddressBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := newTestServer(t)
	err = srv.Start(context.Background(), ln.Addr().String())

	require.Error(t, err, "bind failures must surface instead of blocking")
}

func TestStartShutsDownOnContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx, addr)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
