// Package boltstore is a memory.Store persisted in a bbolt file.
//
// Records are JSON encoded in a single bucket keyed by their time-ordered
// ID. Retrieval scores every stored passage with memory.Score, which is
// fine for the few thousand passages a conversational agent accumulates.
package boltstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/randalmurphal/ltmkit/memory"
)

var recordsBucket = []byte("memories")

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp records added without a
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store implements memory.Store on bbolt.
type Store struct {
	db     *bolt.DB
	closed atomic.Bool

	now    func() time.Time
	logger *slog.Logger
}

var _ memory.Store = (*Store)(nil)

// Open opens or creates the database at path. It waits at most one second
// for the file lock held by another process.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening memory db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating memory bucket: %w", err)
	}

	s := &Store{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With("component", "boltstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add implements memory.Store.
func (s *Store) Add(ctx context.Context, text string, meta memory.Metadata) (memory.ID, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	rec, err := memory.NewRecord(text, meta, s.now)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding memory: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return "", s.wrap("add", err)
	}
	s.logger.Debug("memory added", "id", rec.ID, "keywords", rec.Metadata.Keywords.String())
	return rec.ID, nil
}

// Retrieve implements memory.Store.
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]memory.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var records []memory.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(key, value []byte) error {
			var rec memory.Record
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("decoding memory %s: %w", key, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, s.wrap("retrieve", err)
	}
	return memory.Score(records, query, k), nil
}

// Delete implements memory.Store.
func (s *Store) Delete(ctx context.Context, id memory.ID) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		if b.Get([]byte(id)) == nil {
			return memory.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return s.wrap("delete", err)
	}
	s.logger.Debug("memory deleted", "id", id)
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() (int, error) {
	if s.closed.Load() {
		return 0, memory.ErrStoreClosed
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(recordsBucket).Stats().KeyN
		return nil
	})
	return n, s.wrap("len", err)
}

// Close implements memory.Store.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return memory.ErrStoreClosed
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memory.ErrNotFound):
		return err
	case errors.Is(err, bolterrors.ErrDatabaseNotOpen):
		return memory.ErrStoreClosed
	default:
		return fmt.Errorf("memory %s: %w", op, err)
	}
}
