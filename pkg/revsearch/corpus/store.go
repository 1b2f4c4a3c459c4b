// Package corpus enumerates stored fingerprint records and decodes them into
// entries the match engine can score.
package corpus

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned by Store.Read for a name that does not exist.
// It maps to os.ErrNotExist so filesystem errors match it directly.
var ErrNotFound = os.ErrNotExist

// ErrStoreUnavailable wraps any failure to enumerate a store.
var ErrStoreUnavailable = errors.New("corpus: store unavailable")

// Store is a named set of opaque fingerprint records. Names returned by List
// are relative to the store root and are accepted by Read.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// Writer is implemented by stores that accept new records.
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Counter is implemented by stores that can count records without listing them.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}
