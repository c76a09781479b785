package repository

import (
	"context"
	"fmt"
)

// Entry is one stored key with its value and write revision.
type Entry struct {
	Key      string
	Value    []byte
	Revision int64
}

// UpdateFunc derives the next value of a key from its current one. found is
// false when the key does not exist yet.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// StaleRevisionError reports a write that was rejected because the stored
// record already has a newer revision.
type StaleRevisionError struct {
	Key      string
	Revision int64
	Stored   int64
}

func (e *StaleRevisionError) Error() string {
	return fmt.Sprintf("stale write to %s: revision %d, stored %d", e.Key, e.Revision, e.Stored)
}

// KVStore is the progress store backend: get, set and list by prefix over
// opaque values. Get reports a missing key as a nil entry, not as an error.
type KVStore interface {
	Get(ctx context.Context, key string) (*Entry, error)
	// Set writes value unless the stored revision is newer than revision.
	// applied is false when the write was rejected as stale.
	Set(ctx context.Context, key string, value []byte, revision int64) (applied bool, err error)
	// Update atomically rewrites key, bumping its revision.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}
