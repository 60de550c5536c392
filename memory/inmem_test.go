package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_AddRetrieveDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemoryStore(WithClock(func() time.Time { return now }))

	id1, err := s.Add(ctx, "I moved to Lisbon last year", Metadata{Keywords: Keywords{"Home", "lisbon"}})
	require.NoError(t, err)
	id2, err := s.Add(ctx, "My favourite food is pasta", Metadata{Keywords: NewKeywords("food")})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, s.Len())

	got, err := s.Retrieve(ctx, "where did I move", 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "only passages sharing a term match")
	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, now, got[0].Metadata.Timestamp, "zero timestamp stamped from clock")
	assert.Equal(t, Keywords{"home", "lisbon"}, got[0].Metadata.Keywords, "keywords normalized on add")

	require.NoError(t, s.Delete(ctx, id1))
	assert.ErrorIs(t, s.Delete(ctx, id1), ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestInMemoryStore_EmptyPassage(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Add(context.Background(), "   ", Metadata{})
	assert.ErrorIs(t, err, ErrEmptyPassage)
}

func TestInMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Add(ctx, "text", Metadata{})
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.Retrieve(ctx, "text", 1)
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, s.Delete(ctx, "x"), ErrStoreClosed)
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewInMemoryStore()

	_, err := s.Add(ctx, "text", Metadata{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}
