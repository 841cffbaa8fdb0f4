// Package gqlrequest carries per-request GraphQL state: the decoded request
// document and the request-scoped dependency bundle resolvers read from.
package gqlrequest

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"

	"fluorescence-graphql/internal/dbexec"
	"fluorescence-graphql/internal/storage"
)

type databaseContextKey struct{}
type storageContextKey struct{}
type bucketContextKey struct{}

// Sentinel errors for missing request-scoped dependencies. The request
// handler attaches all three before execution, so hitting one of these means
// a resolver ran outside the normal wiring; it surfaces as a field error,
// never a transport failure.
var (
	ErrNoDatabase = errors.New("no database executor in request context")
	ErrNoStorage  = errors.New("no storage client in request context")
	ErrNoBucket   = errors.New("no storage bucket in request context")
)

// Dependencies is the per-request bundle attached before execution. The
// request borrows the pooled database handle and storage client; it never
// closes them.
type Dependencies struct {
	DB      dbexec.QueryExecutor
	Storage *minio.Client
	Bucket  storage.Bucket
}

// WithDependencies attaches the dependency bundle to the context. Each value
// is stored once; the resulting context is read-only for the request's lifetime.
func WithDependencies(ctx context.Context, deps Dependencies) context.Context {
	ctx = context.WithValue(ctx, databaseContextKey{}, deps.DB)
	ctx = context.WithValue(ctx, storageContextKey{}, deps.Storage)
	return context.WithValue(ctx, bucketContextKey{}, deps.Bucket)
}

// Database retrieves the query executor from the request context.
func Database(ctx context.Context) (dbexec.QueryExecutor, error) {
	executor, ok := ctx.Value(databaseContextKey{}).(dbexec.QueryExecutor)
	if !ok || executor == nil {
		return nil, ErrNoDatabase
	}
	return executor, nil
}

// Storage retrieves the storage client from the request context.
func Storage(ctx context.Context) (*minio.Client, error) {
	client, ok := ctx.Value(storageContextKey{}).(*minio.Client)
	if !ok || client == nil {
		return nil, ErrNoStorage
	}
	return client, nil
}

// BucketName retrieves the storage bucket from the request context.
func BucketName(ctx context.Context) (storage.Bucket, error) {
	bucket, ok := ctx.Value(bucketContextKey{}).(storage.Bucket)
	if !ok || bucket == "" {
		return "", ErrNoBucket
	}
	return bucket, nil
}
