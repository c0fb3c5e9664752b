package app

import (
	"context"
	"fmt"

	"github.com/rentaldesk/searchsync/internal/config"
	"github.com/rentaldesk/searchsync/internal/metrics"
	searchHTTP "github.com/rentaldesk/searchsync/internal/search/http"
	"github.com/rentaldesk/searchsync/internal/search/index"
	searchRepository "github.com/rentaldesk/searchsync/internal/search/repository"
	searchService "github.com/rentaldesk/searchsync/internal/search/service"
	searchUseCase "github.com/rentaldesk/searchsync/internal/search/usecase"
)

// InventoryRepository returns the read-only inventory repository for the
// configured driver.
func (c *Container) InventoryRepository() (searchUseCase.InventoryRepository, error) {
	c.inventoryRepoInit.Do(func() {
		c.inventoryRepo, c.inventoryRepoErr = c.initInventoryRepository()
	})
	return c.inventoryRepo, c.inventoryRepoErr
}

// IndexConnection returns the availability tracker of the search backend. No
// check happens until the connection is first used.
func (c *Container) IndexConnection() (*index.Connection, error) {
	c.indexConnInit.Do(func() {
		c.indexConn, c.indexConnErr = c.initIndexConnection()
	})
	return c.indexConn, c.indexConnErr
}

// SyncUseCase returns the sync orchestrator, instrumented with business metrics.
func (c *Container) SyncUseCase(ctx context.Context) (searchUseCase.SyncUseCase, error) {
	c.syncUseCaseInit.Do(func() {
		c.syncUseCase, c.syncUseCaseErr = c.initSyncUseCase(ctx)
	})
	return c.syncUseCase, c.syncUseCaseErr
}

// ReindexJobs returns the background reindex job registry.
func (c *Container) ReindexJobs(ctx context.Context) (*searchUseCase.ReindexJobs, error) {
	c.reindexJobsInit.Do(func() {
		c.reindexJobs, c.reindexJobsErr = c.initReindexJobs(ctx)
	})
	return c.reindexJobs, c.reindexJobsErr
}

// EventHandler returns the CloudEvents receiver.
func (c *Container) EventHandler(ctx context.Context) (*searchHTTP.EventHandler, error) {
	c.eventHandlerInit.Do(func() {
		c.eventHandler, c.eventHandlerErr = c.initEventHandler(ctx)
	})
	return c.eventHandler, c.eventHandlerErr
}

// IndexHandler returns the index administration handler.
func (c *Container) IndexHandler(ctx context.Context) (*searchHTTP.IndexHandler, error) {
	c.indexHandlerInit.Do(func() {
		c.indexHandler, c.indexHandlerErr = c.initIndexHandler(ctx)
	})
	return c.indexHandler, c.indexHandlerErr
}

func (c *Container) initInventoryRepository() (searchUseCase.InventoryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for inventory repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMySQL:
		return searchRepository.NewMySQLInventoryRepository(db), nil
	case config.DriverPostgres:
		return searchRepository.NewPostgreSQLInventoryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initIndexConnection() (*index.Connection, error) {
	client, err := index.New(index.Config{
		Backend:        c.config.SearchBackend,
		Protocol:       c.config.SearchProtocol,
		Host:           c.config.SearchHost,
		Port:           c.config.SearchPort,
		Username:       c.config.SearchUsername,
		Password:       c.config.SearchPassword,
		APIKey:         c.config.SearchAPIKey,
		ConnectTimeout: c.config.SearchConnectTimeout,
		RequestTimeout: c.config.SearchRequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	conn := index.NewConnection(
		client,
		c.Logger(),
		c.config.SearchReconnectInterval,
		c.config.SearchConnectTimeout,
	)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for index connection: %w", err)
	}
	if provider != nil {
		err := metrics.RegisterBackendGauge(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
			client.Backend(),
			func() bool { return conn.Status().Connected },
		)
		if err != nil {
			return nil, err
		}
	}

	return conn, nil
}

func (c *Container) initSyncUseCase(ctx context.Context) (searchUseCase.SyncUseCase, error) {
	conn, err := c.IndexConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to get index connection for sync use case: %w", err)
	}

	repo, err := c.InventoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory repository for sync use case: %w", err)
	}

	codec, err := c.Codec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get codec for sync use case: %w", err)
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for sync use case: %w", err)
	}

	useCase := searchUseCase.NewSyncUseCase(
		conn,
		repo,
		searchService.NewDocumentBuilder(codec),
		c.Logger(),
		searchUseCase.Options{
			IndexName:       c.config.SearchIndexName,
			FetchBatchSize:  c.config.SyncFetchBatchSize,
			UploadChunkSize: c.config.SyncUploadChunkSize,
			MaxAttempts:     c.config.SyncMaxAttempts,
			DocumentTimeout: c.config.SearchDocumentTimeout,
			BulkTimeout:     c.config.SearchBulkTimeout,
			ChunkRatePerSec: c.config.SyncChunkRatePerSec,
		},
	)
	return searchUseCase.NewSyncUseCaseWithMetrics(useCase, bm), nil
}

func (c *Container) initReindexJobs(ctx context.Context) (*searchUseCase.ReindexJobs, error) {
	useCase, err := c.SyncUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for reindex jobs: %w", err)
	}
	return searchUseCase.NewReindexJobs(useCase, c.Logger()), nil
}

func (c *Container) initEventHandler(ctx context.Context) (*searchHTTP.EventHandler, error) {
	useCase, err := c.SyncUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for event handler: %w", err)
	}
	return searchHTTP.NewEventHandler(useCase, c.Logger()), nil
}

func (c *Container) initIndexHandler(ctx context.Context) (*searchHTTP.IndexHandler, error) {
	useCase, err := c.SyncUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for index handler: %w", err)
	}

	jobs, err := c.ReindexJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reindex jobs for index handler: %w", err)
	}

	return searchHTTP.NewIndexHandler(useCase, jobs, c.Logger()), nil
}
