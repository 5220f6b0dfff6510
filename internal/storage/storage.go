package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound = errors.New("object key not found")
	ErrKeyExists   = errors.New("object key already exists")
)

type ObjectInfo struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BlobStore is the narrow client for the external object store holding raw
// document bytes. Documents are immutable once written; there is no delete.
type BlobStore interface {
	// Put writes data under key. With overwrite false it fails with
	// ErrKeyExists instead of replacing an existing object.
	Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error
	// Get returns the full object content, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// PublicURL returns the browser-reachable URL for key. It does not
	// verify that the object exists.
	PublicURL(key string) string
	// List returns all stored objects, newest first.
	List(ctx context.Context) ([]ObjectInfo, error)
}
