package web

import (
	"context"
	"net/http"

	"aduan-agent/config"
	"aduan-agent/database"
	"aduan-agent/pipeline"
	"aduan-agent/social"
	"aduan-agent/web/handlers"
	"aduan-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	pipeline *pipeline.Pipeline
	resolver *social.Resolver
	store    *database.PostgresStore
	limiter  *middleware.ClientRateLimiter
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(p *pipeline.Pipeline, resolver *social.Resolver, store *database.PostgresStore, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		// Unexpected internal errors: log the cause, never leak it
		logger.Error("Panic recovered in handler", zap.Any("error", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(middleware.RequestLog(logger))
	router.Use(middleware.CORS())

	server := &Server{
		router:   router,
		pipeline: p,
		resolver: resolver,
		store:    store,
		limiter:  middleware.NewClientRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurstSize, logger),
		logger:   logger,
		config:   cfg,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	complaintHandler := handlers.NewComplaintHandler(s.pipeline, s.resolver, s.config, s.logger)

	api := s.router.Group("/api", s.limiter.Middleware())
	api.POST("/complaint", complaintHandler.ProcessComplaint)
	api.POST("/social-handle", complaintHandler.LookupHandle)

	s.router.GET("/healthz", func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine; a bind failure must reach the caller
	// instead of leaving a dead server blocked on ctx.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.logger.Error("Web server failed to start", zap.Error(err))
		s.limiter.Stop()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	return srv.Shutdown(context.Background())
}
