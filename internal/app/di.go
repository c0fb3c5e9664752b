// Package app wires the application components together. Components are built
// lazily on first access and shared afterwards.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/rentaldesk/searchsync/internal/config"
	cryptoService "github.com/rentaldesk/searchsync/internal/crypto/service"
	"github.com/rentaldesk/searchsync/internal/database"
	"github.com/rentaldesk/searchsync/internal/http"
	"github.com/rentaldesk/searchsync/internal/metrics"
	recordsService "github.com/rentaldesk/searchsync/internal/records/service"
	searchHTTP "github.com/rentaldesk/searchsync/internal/search/http"
	"github.com/rentaldesk/searchsync/internal/search/index"
	searchUseCase "github.com/rentaldesk/searchsync/internal/search/usecase"
)

// Container holds the application dependencies.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService  cryptoService.KMSService
	fieldCipher cryptoService.FieldCipher
	codec       *recordsService.Codec

	// Search
	inventoryRepo searchUseCase.InventoryRepository
	indexConn     *index.Connection
	syncUseCase   searchUseCase.SyncUseCase
	reindexJobs   *searchUseCase.ReindexJobs
	eventHandler  *searchHTTP.EventHandler
	indexHandler  *searchHTTP.IndexHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu sync.Mutex

	loggerInit          sync.Once
	dbInit              sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	kmsServiceInit      sync.Once
	fieldCipherInit     sync.Once
	codecInit           sync.Once
	inventoryRepoInit   sync.Once
	indexConnInit       sync.Once
	syncUseCaseInit     sync.Once
	reindexJobsInit     sync.Once
	eventHandlerInit    sync.Once
	indexHandlerInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once

	dbErr              error
	metricsProviderErr error
	businessMetricsErr error
	fieldCipherErr     error
	codecErr           error
	inventoryRepoErr   error
	indexConnErr       error
	syncUseCaseErr     error
	reindexJobsErr     error
	eventHandlerErr    error
	indexHandlerErr    error
	httpServerErr      error
	metricsServerErr   error
}

// NewContainer creates a container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger at the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the primary store connection pool.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		c.db, c.dbErr = c.initDB()
	})
	return c.db, c.dbErr
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, c.metricsProviderErr = c.initMetricsProvider()
	})
	return c.metricsProvider, c.metricsProviderErr
}

// BusinessMetrics returns the use case metrics recorder. It is a no-op when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, c.businessMetricsErr = c.initBusinessMetrics()
	})
	return c.businessMetrics, c.businessMetricsErr
}

// HTTPServer returns the API server with every route registered. ctx bounds the
// background goroutines the router starts.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		c.httpServer, c.httpServerErr = c.initHTTPServer(ctx)
	})
	return c.httpServer, c.httpServerErr
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		c.metricsServer, c.metricsServerErr = c.initMetricsServer()
	})
	return c.metricsServer, c.metricsServerErr
}

// Shutdown releases every initialized resource. Running reindex jobs are
// cancelled first so they stop writing before the database closes.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.reindexJobs != nil {
		c.reindexJobs.Close()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Container) initLogger() *slog.Logger {
	var level slog.Level
	switch c.config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return bm, nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	conn, err := c.IndexConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to get index connection for http server: %w", err)
	}

	eventHandler, err := c.EventHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event handler for http server: %w", err)
	}

	indexHandler, err := c.IndexHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get index handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, conn, eventHandler, indexHandler, provider, c.config.MetricsNamespace)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider.Handler()), nil
}
