// Package http provides the HTTP server, router and shared middleware.
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

	"github.com/rentaldesk/searchsync/internal/config"
	"github.com/rentaldesk/searchsync/internal/metrics"
	searchHTTP "github.com/rentaldesk/searchsync/internal/search/http"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	conn   *index.Connection
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	conn *index.Connection,
	eventHandler *searchHTTP.EventHandler,
	indexHandler *searchHTTP.IndexHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	s.conn = conn

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/events", eventHandler.ReceiveHandler)
	v1.POST("/search", indexHandler.SearchHandler)

	indexGroup := v1.Group("/index")
	{
		indexGroup.POST("", indexHandler.InitIndexHandler)
		indexGroup.GET("/status", indexHandler.StatusHandler)
		indexGroup.PUT("/items/:id", indexHandler.SyncItemHandler)
		indexGroup.DELETE("/items/:id", indexHandler.DeleteItemHandler)
		indexGroup.POST("/reindex", indexHandler.StartReindexHandler)
		indexGroup.GET("/reindex", indexHandler.ListReindexHandler)
		indexGroup.GET("/reindex/:job_id", indexHandler.GetReindexHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready when the primary store answers. An unavailable
// search backend degrades the service without making it unready: events are still
// accepted and the index can be repaired with a resync.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	switch {
	case s.conn == nil:
		components["search"] = "unconfigured"
	case s.conn.Ensure(ctx):
		components["search"] = "ok"
	default:
		components["search"] = "unavailable"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
