// Package store defines the JSON document store contract and its
// file-backed implementation.
//
// Documents are addressed by slash-separated relative keys such as
// "settings/profile.json". A Store reads and writes whole documents; the
// cache package decorates any Store with a read cache and write
// deduplication, and the watch package polls one key for changes.
package store

import (
	"context"
)

// Store is a JSON document store addressed by relative keys.
//
// Implementations return *errors.StoreError values carrying one of the
// store error codes: CodeNotFound when a key is absent, CodeDecodeFailed
// and CodeEncodeFailed for codec failures, and backend codes for
// everything else.
type Store interface {
	// Get returns the raw bytes stored at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInto decodes the document at key into v.
	GetInto(ctx context.Context, key string, v any) error

	// Put encodes v and stores it at key, replacing any previous document.
	Put(ctx context.Context, key string, v any) error

	// PutRaw stores already-encoded bytes at key.
	PutRaw(ctx context.Context, key string, data []byte) error

	// Exists reports whether a document is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the document at key. Deleting an absent key fails.
	Delete(ctx context.Context, key string) error

	// List returns the sorted keys of the documents directly inside dir.
	// An empty dir lists the root.
	List(ctx context.Context, dir string) ([]string, error)
}

// Getter is the read side of a Store.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// GetAs decodes the document at key into a new T.
func GetAs[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	if err := s.GetInto(ctx, key, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
