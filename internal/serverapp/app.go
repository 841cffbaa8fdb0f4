// Package serverapp owns the server lifecycle: resource acquisition,
// startup, and ordered shutdown.
package serverapp

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"github.com/minio/minio-go/v7"

	"fluorescence-graphql/internal/config"
	"fluorescence-graphql/internal/graph"
	"fluorescence-graphql/internal/logging"
	"fluorescence-graphql/internal/observability"
)

// App owns runtime resources for the fluorescence-graphql server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider
	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	graphqlMetrics *observability.GraphQLMetrics

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }

	storageClient *minio.Client
	schema        *graph.Schema

	handler    http.Handler
	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Handler exposes the composed HTTP handler, for tests.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}
