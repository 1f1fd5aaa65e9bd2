// Package storage provides the key/value document repositories the ledger
// snapshot and the session are persisted to. SQLite is the local default;
// PostgreSQL and Redis allow several workstations to share one ledger.
package storage

import (
	"context"
)

// Repository stores opaque documents by key.
//
// Get returns (nil, nil) when the key does not exist. Delete of a missing key
// is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
