// Package storage defines the versioned key-value contract the account store
// and match registry are written against, plus an in-process implementation.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key has no stored record
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when a compare-and-swap observes a different version
	ErrVersionConflict = errors.New("record version conflict")
)

// Record is a stored value together with its version.
// Version 0 is never stored; it denotes "absent" in CompareAndSwap.
type Record struct {
	Key       string
	Version   int64
	Value     []byte
	UpdatedAt time.Time
}

// Store is a durable key-value store with optimistic concurrency
type Store interface {
	// Get returns the record stored under key or ErrNotFound
	Get(ctx context.Context, key string) (Record, error)

	// Put writes value unconditionally and bumps the version
	Put(ctx context.Context, key string, value []byte) (Record, error)

	// CompareAndSwap writes value only if the stored version equals expectedVersion.
	// An expectedVersion of 0 creates the key and fails if it already exists.
	CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (Record, error)

	// List returns a snapshot of every record whose key starts with prefix, ordered by key
	List(ctx context.Context, prefix string) ([]Record, error)
}
