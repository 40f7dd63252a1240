package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV implementations when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a durable key-value slot store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
