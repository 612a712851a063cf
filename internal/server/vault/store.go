// Package vault manages the per-user encrypted blobs. The server treats
// them as opaque: every byte stored here was sealed client-side and the
// decryption key never reaches this code.
package vault

import (
	"context"
	"time"
)

// File is a stored vault blob.
type File struct {
	Content      string
	LastModified time.Time
}

// Store is the blob store collaborator. Get and Size return
// common.ErrorNotFound for users whose vault was never written.
type Store interface {
	Get(ctx context.Context, userID string) (*File, error)
	Put(ctx context.Context, userID string, content string) (time.Time, error)
	Size(ctx context.Context, userID string) (int64, error)
}
