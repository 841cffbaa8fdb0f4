// Package gqlhandler serves the GraphQL endpoint. POST requests run through
// the resolution pipeline: parse body, attach request-scoped dependencies,
// execute, serialize. GET serves the interactive GraphiQL page.
package gqlhandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/minio/minio-go/v7"

	"fluorescence-graphql/internal/dbexec"
	"fluorescence-graphql/internal/gqlrequest"
	"fluorescence-graphql/internal/logging"
	"fluorescence-graphql/internal/observability"
	"fluorescence-graphql/internal/storage"
)

// Executor runs a structured query document against a compiled schema. The
// handler depends only on this capability, never on a concrete schema type.
type Executor interface {
	Execute(ctx context.Context, doc gqlrequest.Document) *graphql.Result
}

// Handler is the GraphQL endpoint handler. It owns the injected process-wide
// dependencies it lends to each request through the request context.
type Handler struct {
	executor Executor
	db       dbexec.QueryExecutor
	storage  *minio.Client
	bucket   storage.Bucket
	explorer http.Handler
	metrics  *observability.GraphQLMetrics
}

// New creates the endpoint handler. explorer serves GET requests (the
// GraphiQL page); it may be nil to disable the exploration UI.
func New(executor Executor, db dbexec.QueryExecutor, storageClient *minio.Client, bucket storage.Bucket, explorer http.Handler, metrics *observability.GraphQLMetrics) *Handler {
	return &Handler{
		executor: executor,
		db:       db,
		storage:  storageClient,
		bucket:   bucket,
		explorer: explorer,
		metrics:  metrics,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if h.explorer == nil {
			http.Error(w, "GraphiQL is disabled", http.StatusNotFound)
			return
		}
		h.explorer.ServeHTTP(w, r)
	case http.MethodPost:
		h.serveQuery(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// serveQuery drives one request through its states: parsing the body,
// executing against the schema, and writing the response envelope. A body
// that fails to parse short-circuits to a 400 with the parse error text;
// once parsing succeeds, field errors ride inside a 200 envelope.
func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	doc, err := gqlrequest.DecodeDocument(r)
	if err != nil {
		h.metrics.Record(r.Context(), observability.OutcomeParseError, time.Since(start))
		logging.FromContext(r.Context()).Warn("rejecting unparseable GraphQL request",
			slog.String("error", err.Error()),
		)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := gqlrequest.WithDependencies(r.Context(), gqlrequest.Dependencies{
		DB:      h.db,
		Storage: h.storage,
		Bucket:  h.bucket,
	})
	result := h.executor.Execute(ctx, doc)

	outcome := observability.OutcomeOK
	if len(result.Errors) > 0 {
		outcome = observability.OutcomeFieldErrors
	}
	h.metrics.Record(ctx, outcome, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logging.FromContext(ctx).Error("failed to write GraphQL response",
			slog.String("error", err.Error()),
		)
	}
}
