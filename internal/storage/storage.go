// Package storage defines the object store capability the file managers
// depend on. Implementations only move bytes, they hold no business logic.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type PutInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Object is a blob being streamed out of the store. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Metadata    map[string]string
}

type ObjectStore interface {
	// EnsureBucket creates the bucket if it doesn't exist yet
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, in *PutInput) error
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Delete(ctx context.Context, bucket, key string) error
}
