package config

import (
	"fmt"
	"net/url"
)

// ValidationIssue describes one configuration problem.
type ValidationIssue struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult collects configuration errors and warnings.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether validation found any hard errors.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Validate checks the configuration for problems that would prevent startup
// (errors) or degrade the service (warnings).
func (c *Config) Validate() ValidationResult {
	var result ValidationResult

	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "database",
			Message: "no database configured",
			Hint:    "set database.dsn or database.host",
		})
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range", c.Server.Port),
			Hint:    "use a port between 1 and 65535",
		})
	}
	if c.Observability.TraceSampleRatio < 0 || c.Observability.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("sample ratio %v out of range", c.Observability.TraceSampleRatio),
			Hint:    "use a ratio between 0 and 1",
		})
	}
	if (c.Observability.TracingEnabled || c.Observability.Logging.ExportsEnabled) && c.Observability.OTLP.Endpoint == "" {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "observability.otlp.endpoint",
			Message: "OTLP export enabled without a collector endpoint",
			Hint:    "set observability.otlp.endpoint or disable tracing/log exports",
		})
	}

	if c.Storage.Bucket == "" {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Field:   "storage.bucket",
			Message: "no storage bucket configured",
			Hint:    "scan file URL resolution will be unavailable",
		})
	}
	if c.Storage.EndpointURL != "" {
		if parsed, err := url.Parse(c.Storage.EndpointURL); err != nil || parsed.Host == "" {
			result.Errors = append(result.Errors, ValidationIssue{
				Field:   "storage.endpoint_url",
				Message: fmt.Sprintf("invalid endpoint URL %q", c.Storage.EndpointURL),
				Hint:    "use a full URL such as https://s3.example.com",
			})
		}
	} else if c.Storage.Bucket != "" {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Field:   "storage.endpoint_url",
			Message: "storage bucket configured without an endpoint URL",
			Hint:    "set storage.endpoint_url to reach the object store",
		})
	}

	return result
}
