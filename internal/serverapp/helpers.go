package serverapp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/XSAM/otelsql"
	gqlhttp "github.com/graphql-go/handler"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"fluorescence-graphql/internal/config"
	"fluorescence-graphql/internal/dbexec"
	"fluorescence-graphql/internal/gqlhandler"
	"fluorescence-graphql/internal/graph"
	"fluorescence-graphql/internal/logging"
	"fluorescence-graphql/internal/middleware"
	"fluorescence-graphql/internal/observability"
	"fluorescence-graphql/internal/storage"
)

func otelConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLP: observability.OTLPExporterConfig{
			Endpoint:    cfg.Observability.OTLP.Endpoint,
			Protocol:    cfg.Observability.OTLP.Protocol,
			Insecure:    cfg.Observability.OTLP.Insecure,
			TLSCertFile: cfg.Observability.OTLP.TLSCertFile,
			Timeout:     cfg.Observability.OTLP.Timeout,
		},
	}
}

// InitLogger builds the process logger, with OTLP export when configured.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	var provider *observability.LoggerProvider
	logCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	if cfg.Observability.Logging.ExportsEnabled {
		var err error
		provider, err = observability.InitLoggerProvider(otelConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OTLP log export: %w", err)
		}
		logCfg.LoggerProvider = provider.Provider()
	}
	return logging.NewLogger(logCfg), provider, nil
}

func initMetrics(cfg *config.Config) (*observability.MeterProvider, *observability.GraphQLMetrics, error) {
	if !cfg.Observability.MetricsEnabled {
		return nil, nil, nil
	}
	meterProvider, err := observability.InitMeterProvider(otelConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	graphqlMetrics, err := observability.NewGraphQLMetrics()
	if err != nil {
		return nil, nil, err
	}
	return meterProvider, graphqlMetrics, nil
}

func initTracing(cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}
	return observability.InitTracerProvider(otelConfig(cfg))
}

func connectDB(cfg *config.Config, logger *logging.Logger) (*sql.DB, interface{ Unregister() error }, error) {
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, nil, err
	}

	var db *sql.DB
	var dbStatsReg interface{ Unregister() error }

	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		opts := []otelsql.Option{otelsql.WithAttributes(semconv.DBSystemMySQL)}
		if cfg.Observability.TracingEnabled {
			opts = append(opts, otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}))
		}
		db, err = otelsql.Open("mysql", dsn, opts...)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Observability.MetricsEnabled {
			dbStatsReg, err = otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemMySQL))
			if err != nil {
				logger.Warn("failed to register DB stats metrics", slog.String("error", err.Error()))
			}
		}
	} else {
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, err
		}
	}

	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)
	return db, dbStatsReg, nil
}

func verifyDB(ctx context.Context, cfg *config.Config, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectionTimeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

// buildStorageClient creates the S3 client lent to each request context. A
// missing endpoint leaves the client nil; resolvers that need it fail with a
// distinct missing-dependency error rather than a nil dereference.
func buildStorageClient(cfg *config.Config, logger *logging.Logger) (*minio.Client, error) {
	if cfg.Storage.EndpointURL == "" {
		logger.Warn("no storage endpoint configured, scan file URL resolution unavailable")
		return nil, nil
	}
	return storage.NewClient(storage.Config{
		EndpointURL:     cfg.Storage.EndpointURL,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Region:          cfg.Storage.Region,
		ForcePathStyle:  cfg.Storage.ForcePathStyle,
		URLExpiry:       cfg.Storage.URLExpiry,
	})
}

func buildSchema() (*graph.Schema, error) {
	return graph.New()
}

func buildGraphQLHandler(cfg *config.Config, schema *graph.Schema, db *sql.DB, storageClient *minio.Client, metrics *observability.GraphQLMetrics) http.Handler {
	var explorer http.Handler
	if cfg.Server.GraphiQLEnabled {
		explorer = gqlhttp.New(&gqlhttp.Config{
			Schema:   schema.Root(),
			Pretty:   true,
			GraphiQL: true,
		})
	}
	return gqlhandler.New(
		schema,
		dbexec.NewStandardExecutor(db),
		storageClient,
		storage.Bucket(cfg.Storage.Bucket),
		explorer,
		metrics,
	)
}

func buildRouter(cfg *config.Config, db *sql.DB, graphqlHandler http.Handler, meterProvider *observability.MeterProvider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", graphqlHandler)
	mux.HandleFunc("/healthz", healthHandler(cfg, db))
	if meterProvider != nil {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

func healthHandler(cfg *config.Config, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.Server.HealthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]string{"status": "unavailable", "error": err.Error()}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func wrapHTTPHandler(cfg *config.Config, logger *logging.Logger, mux *http.ServeMux) http.Handler {
	handler := middleware.LoggingMiddleware(logger)(mux)
	if cfg.Observability.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "fluorescence-graphql")
	}
	return handler
}

func buildServer(cfg *config.Config, handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
