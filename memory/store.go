package memory

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned by Delete for an unknown ID.
	ErrNotFound = errors.New("memory not found")

	// ErrStoreClosed is returned by any operation after Close.
	ErrStoreClosed = errors.New("memory store closed")

	// ErrEmptyPassage is returned by Add for blank text.
	ErrEmptyPassage = errors.New("memory passage is empty")
)

// Store is an append-only passage store with similarity retrieval.
// Implementations are safe for concurrent use, but callers sharing one
// store across agents must serialize read-modify-delete sequences
// themselves.
type Store interface {
	// Add stores text with metadata and returns its stable ID. A zero
	// Metadata.Timestamp is replaced with the current time; keywords are
	// normalized.
	Add(ctx context.Context, text string, meta Metadata) (ID, error)

	// Retrieve returns up to k records most similar to query, best first,
	// with Relevance and Distance populated.
	Retrieve(ctx context.Context, query string, k int) ([]Record, error)

	// Delete removes the record with the given ID.
	Delete(ctx context.Context, id ID) error

	// Close releases the store. Further calls return ErrStoreClosed.
	Close() error
}
