// Package http provides the API server, router assembly and the
// standalone metrics server.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	directoryHTTP "github.com/runavault/runavault/internal/directory/http"
	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/metrics"
	vaultHTTP "github.com/runavault/runavault/internal/vault/http"
)

// RouterConfig carries everything needed to assemble the API router.
type RouterConfig struct {
	Logger *slog.Logger

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	MetricsProvider  *metrics.Provider
	MetricsNamespace string

	SecretHandler    *vaultHTTP.SecretHandler
	DirectoryHandler *directoryHTTP.DirectoryHandler
}

// NewRouter builds the gin engine with middleware and all API routes.
// Health endpoints are mounted outside the authenticated group.
func NewRouter(baseCtx context.Context, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(cfg.Logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.Logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler(baseCtx.Done()))

	v1 := router.Group("/v1")
	v1.Use(identity.Middleware(cfg.Logger))
	if cfg.RateLimitEnabled {
		v1.Use(identity.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, cfg.Logger))
	}

	if h := cfg.SecretHandler; h != nil {
		v1.POST("/secrets", h.CreateHandler)
		v1.GET("/secrets", h.ListHandler)
		v1.GET("/secrets/:id", h.GetHandler)
		v1.PUT("/secrets/:id", h.EditHandler)
		v1.DELETE("/secrets/:id", h.DeleteHandler)
		v1.PUT("/secrets/:id/favorite", h.FavoriteHandler)
		v1.POST("/secrets/:id/share", h.ShareHandler)
		v1.POST("/secrets/share-directory", h.ShareDirectoryHandler)
	}

	if h := cfg.DirectoryHandler; h != nil {
		v1.POST("/users", h.CreateUserHandler)
		v1.GET("/users", h.ListUsersHandler)
		v1.PUT("/users/:username", h.EditUserHandler)
		v1.DELETE("/users/:username", h.DeleteUserHandler)
		v1.POST("/groups", h.CreateGroupHandler)
		v1.GET("/groups", h.ListGroupsHandler)
		v1.DELETE("/groups/:name", h.DeleteGroupHandler)
		v1.GET("/groups/:name/members", h.ListMembersHandler)
		v1.POST("/groups/:name/members", h.AddMemberHandler)
		v1.DELETE("/groups/:name/members/:username", h.RemoveMemberHandler)
	}

	return router
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server around an assembled router.
func NewServer(host string, port int, router *gin.Engine, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
