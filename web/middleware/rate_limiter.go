package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// ClientRateLimiter manages per-client-IP token buckets for the complaint
// endpoints. Entries idle past the retention age are dropped by a background
// sweep.
type ClientRateLimiter struct {
	perMinute int
	burstSize int
	buckets   map[string]*TokenBucket
	lastSeen  map[string]time.Time
	mu        sync.Mutex
	logger    *zap.Logger
	stop      chan struct{}
}

func NewClientRateLimiter(perMinute, burstSize int, logger *zap.Logger) *ClientRateLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	if burstSize <= 0 {
		burstSize = 5
	}
	rl := &ClientRateLimiter{
		perMinute: perMinute,
		burstSize: burstSize,
		buckets:   make(map[string]*TokenBucket),
		lastSeen:  make(map[string]time.Time),
		logger:    logger,
		stop:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *ClientRateLimiter) bucketFor(clientIP string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[clientIP]
	if !ok {
		bucket = NewTokenBucket(float64(rl.burstSize), float64(rl.perMinute)/60.0)
		rl.buckets[clientIP] = bucket
	}
	rl.lastSeen[clientIP] = time.Now()
	return bucket
}

// Middleware rejects requests over the per-client budget with 429.
func (rl *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.bucketFor(c.ClientIP()).Allow() {
			rl.logger.Warn("Rate limit exceeded", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}

func (rl *ClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Hour)
			rl.mu.Lock()
			for ip, seen := range rl.lastSeen {
				if seen.Before(cutoff) {
					delete(rl.buckets, ip)
					delete(rl.lastSeen, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop terminates the background cleanup goroutine.
func (rl *ClientRateLimiter) Stop() {
	close(rl.stop)
}
