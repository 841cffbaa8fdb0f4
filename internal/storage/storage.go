// Package storage builds the S3 client used to reference scan files.
// Scan records carry absolute file paths; the client turns a stored path into
// an accessible object URL. No writes are ever performed.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Bucket identifies the S3 bucket holding scan files.
type Bucket string

// Config holds S3 client parameters.
type Config struct {
	// EndpointURL is the full S3 endpoint, e.g. "https://s3.example.com" or
	// "http://minio:9000". The scheme selects TLS.
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	// ForcePathStyle selects path-style bucket addressing, required by most
	// on-premise S3 implementations.
	ForcePathStyle bool
	// URLExpiry bounds the lifetime of presigned object URLs.
	URLExpiry time.Duration
}

// DefaultURLExpiry applies when Config.URLExpiry is zero.
const DefaultURLExpiry = 15 * time.Minute

// NewClient creates an S3 client from static credentials and endpoint configuration.
func NewClient(cfg Config) (*minio.Client, error) {
	endpoint, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint URL %q: %w", cfg.EndpointURL, err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("storage endpoint URL %q has no host", cfg.EndpointURL)
	}

	lookup := minio.BucketLookupDNS
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint.Host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       endpoint.Scheme != "http",
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// ScanFileURL produces a presigned GET URL for a scan file path recorded in
// the database. The leading slash of an absolute path is stripped to form the
// object key. Signing is local; no request is issued to the storage service.
func ScanFileURL(ctx context.Context, client *minio.Client, bucket Bucket, scanFilePath string, expiry time.Duration) (*url.URL, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is nil")
	}
	key := strings.TrimPrefix(scanFilePath, "/")
	if key == "" {
		return nil, fmt.Errorf("scan file path is empty")
	}
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	signed, err := client.PresignedGetObject(ctx, string(bucket), key, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to presign scan file URL: %w", err)
	}
	return signed, nil
}
