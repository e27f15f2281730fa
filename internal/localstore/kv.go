// Package localstore implements the data-access contract over in-process
// slices persisted to a key-value medium after every mutation.
package localstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KV.Get for a key that was never written.
var ErrKeyNotFound = errors.New("key not found")

// KV is the persistence medium: one opaque value per key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value at key. It returns store.ErrQuotaExceeded
	// (wrapped) when the medium is full.
	Set(ctx context.Context, key string, value []byte) error

	Close() error
}
