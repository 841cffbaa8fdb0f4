package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Request outcomes recorded on GraphQL metrics.
const (
	OutcomeOK          = "ok"
	OutcomeFieldErrors = "field_errors"
	OutcomeParseError  = "parse_error"
)

// GraphQLMetrics records request counts and durations for the GraphQL endpoint.
type GraphQLMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGraphQLMetrics creates GraphQL request metrics on the global meter provider.
func NewGraphQLMetrics() (*GraphQLMetrics, error) {
	meter := otel.Meter("fluorescence-graphql")

	requests, err := meter.Int64Counter(
		"graphql.requests",
		metric.WithDescription("Number of GraphQL requests by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"graphql.request.duration",
		metric.WithDescription("GraphQL request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &GraphQLMetrics{requests: requests, duration: duration}, nil
}

// Record registers one request with its outcome and duration. Nil receivers
// are allowed so the handler works with metrics disabled.
func (m *GraphQLMetrics) Record(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
