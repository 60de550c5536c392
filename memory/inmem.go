package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoreOption configures an InMemoryStore.
type StoreOption func(*InMemoryStore)

// WithClock sets the time source used to stamp records added without a
// timestamp.
func WithClock(now func() time.Time) StoreOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *InMemoryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// InMemoryStore is a Store held in process memory with lexical scoring
// (see Score). Records keep insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
	closed  bool

	now    func() time.Time
	logger *slog.Logger
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{
		now:    time.Now,
		logger: slog.Default().With("component", "memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add implements Store.
func (s *InMemoryStore) Add(ctx context.Context, text string, meta Metadata) (ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec, err := NewRecord(text, meta, s.now)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrStoreClosed
	}
	s.records = append(s.records, rec)
	s.logger.Debug("memory added", "id", rec.ID, "keywords", rec.Metadata.Keywords.String())
	return rec.ID, nil
}

// Retrieve implements Store.
func (s *InMemoryStore) Retrieve(ctx context.Context, query string, k int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return Score(s.records, query, k), nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(ctx context.Context, id ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.logger.Debug("memory deleted", "id", id)
			return nil
		}
	}
	return ErrNotFound
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}

// NewRecord validates text and builds a record with a fresh time-ordered
// ID, normalized keywords, and a timestamp from now when meta has none.
// Store implementations share it so records look the same in every backend.
func NewRecord(text string, meta Metadata, now func() time.Time) (Record, error) {
	if strings.TrimSpace(text) == "" {
		return Record{}, ErrEmptyPassage
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now()
	}
	meta.Keywords = meta.Keywords.Normalized()
	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("new memory id: %w", err)
	}
	return Record{
		ID:       ID(id.String()),
		Passage:  text,
		Metadata: meta,
	}, nil
}
