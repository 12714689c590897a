// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/innwise/fieldvault/internal/audit/http"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardHTTP "github.com/innwise/fieldvault/internal/guard/http"
	guardUseCase "github.com/innwise/fieldvault/internal/guard/usecase"
	identityUseCase "github.com/innwise/fieldvault/internal/identity/usecase"
	"github.com/innwise/fieldvault/internal/metrics"
	recordsHTTP "github.com/innwise/fieldvault/internal/records/http"
	retentionHTTP "github.com/innwise/fieldvault/internal/retention/http"
)

// Server represents the HTTP server for the records API.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The route tree is built separately by
// SetupRouter; the db handle backs the readiness probe.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:     db,
		logger: logger,
	}
}

// RouterConfig carries the handlers and middleware settings SetupRouter wires
// into the route tree.
type RouterConfig struct {
	IdentityUseCase identityUseCase.IdentityUseCase
	GuardUseCase    guardUseCase.GuardUseCase
	AuditUseCase    auditUseCase.AuditUseCase

	RecordHandler    *recordsHTTP.RecordHandler
	EntryHandler     *auditHTTP.EntryHandler
	LifecycleHandler *retentionHTTP.LifecycleHandler

	// RateLimitRPS enables per-subject rate limiting when positive.
	RateLimitRPS   float64
	RateLimitBurst int

	CORSEnabled      bool
	CORSAllowOrigins string

	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// SetupRouter builds the route tree: health probes on the root, and the
// guarded v1 API behind authentication, per-subject rate limiting, and the
// per-operation guard middleware each handler registers itself with.
func (s *Server) SetupRouter(cfg RouterConfig) error {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(guardHTTP.AuthenticationMiddleware(cfg.IdentityUseCase, cfg.AuditUseCase, s.logger))
	if cfg.RateLimitRPS > 0 {
		v1.Use(guardHTTP.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	guardFor := func(op *guardDomain.Operation) gin.HandlerFunc {
		return guardHTTP.GuardMiddleware(cfg.GuardUseCase, cfg.AuditUseCase, op, s.logger)
	}

	if err := cfg.RecordHandler.RegisterRoutes(v1, guardFor); err != nil {
		return err
	}
	if err := cfg.LifecycleHandler.RegisterRoutes(v1, guardFor); err != nil {
		return err
	}
	cfg.EntryHandler.RegisterRoutes(v1, guardFor)

	s.router = router
	s.server.Handler = router

	return nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		if s.router == nil {
			return fmt.Errorf("router not initialized: call SetupRouter before Start")
		}
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
