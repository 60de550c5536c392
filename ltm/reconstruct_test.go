package ltm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/provider"
)

// echoFold answers each fold step with "<state>+<memory>".
func echoFold(_ context.Context, req provider.Request) (*provider.Response, error) {
	_, state, _ := strings.Cut(req.Messages[1].Content, "\n")
	_, passage, _ := strings.Cut(req.Messages[2].Content, "\n")
	return &provider.Response{Content: state + "+" + passage}, nil
}

func foldRecords() []memory.Record {
	return []memory.Record{
		{ID: "b", Passage: "b", Metadata: memory.Metadata{Timestamp: fixedNow.Add(time.Minute)}},
		{ID: "c", Passage: "c", Metadata: memory.Metadata{Timestamp: fixedNow.Add(2 * time.Minute)}},
		{ID: "a", Passage: "a", Metadata: memory.Metadata{Timestamp: fixedNow}},
	}
}

func TestFold_OldestFirst(t *testing.T) {
	mock := provider.NewMockClient().WithCompleteFunc(echoFold)
	r := NewReconstructor(mock)

	state, err := r.Fold(context.Background(), foldRecords(), EmptyState)
	require.NoError(t, err)
	assert.Equal(t, State("{}+a+b+c"), state)
	require.Equal(t, 3, mock.CallCount())

	first := mock.Calls[0]
	require.Len(t, first.Messages, 3)
	assert.Equal(t, provider.RoleSystem, first.Messages[0].Role)
	assert.Equal(t, "The current state is:\n{}", first.Messages[1].Content)
	assert.Equal(t, "gpt-4o", first.Model)
	assert.Empty(t, first.Tools)
}

func TestFold_NewestFirst(t *testing.T) {
	mock := provider.NewMockClient().WithCompleteFunc(echoFold)
	r := NewReconstructor(mock, WithFoldOrder(FoldNewestFirst))

	state, err := r.Fold(context.Background(), foldRecords(), "")
	require.NoError(t, err)
	assert.Equal(t, State("{}+c+b+a"), state)
}

func TestFold_EqualTimestampsKeepInputOrder(t *testing.T) {
	mock := provider.NewMockClient().WithCompleteFunc(echoFold)
	r := NewReconstructor(mock)

	recs := []memory.Record{
		{ID: "x", Passage: "x", Metadata: memory.Metadata{Timestamp: fixedNow}},
		{ID: "y", Passage: "y", Metadata: memory.Metadata{Timestamp: fixedNow}},
	}
	state, err := r.Fold(context.Background(), recs, `{"k":1}`)
	require.NoError(t, err)
	assert.Equal(t, State(`{"k":1}+x+y`), state)
}

func TestFold_NoRecords(t *testing.T) {
	mock := provider.NewMockClient("unused")
	r := NewReconstructor(mock)

	state, err := r.Fold(context.Background(), nil, `{"name":"Ada"}`)
	require.NoError(t, err)
	assert.Equal(t, State(`{"name":"Ada"}`), state)
	assert.Zero(t, mock.CallCount())
}

func TestFold_EmptyReplyKeepsState(t *testing.T) {
	mock := provider.NewMockClient(`{"a":1}`, "   ", `{"a":1,"c":3}`)
	r := NewReconstructor(mock)

	state, err := r.Fold(context.Background(), foldRecords(), EmptyState)
	require.NoError(t, err)
	assert.Equal(t, State(`{"a":1,"c":3}`), state)
	assert.Equal(t, "The current state is:\n{\"a\":1}", mock.Calls[2].Messages[1].Content)
}

func TestFold_ProviderErrorAborts(t *testing.T) {
	boom := errors.New("upstream down")
	calls := 0
	mock := provider.NewMockClient().WithCompleteFunc(func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return echoFold(ctx, req)
	})
	r := NewReconstructor(mock)

	state, err := r.Fold(context.Background(), foldRecords(), EmptyState)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fold memory 2 of 3")
	assert.Empty(t, state)
	assert.Equal(t, 2, mock.CallCount())
}

func TestParseFoldOrder(t *testing.T) {
	tests := []struct {
		in   string
		want FoldOrder
		ok   bool
	}{
		{"oldest_first", FoldOldestFirst, true},
		{"Newest-First", FoldNewestFirst, true},
		{"", FoldOldestFirst, true},
		{"sideways", FoldOldestFirst, false},
	}
	for _, tt := range tests {
		got, ok := ParseFoldOrder(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
	assert.Equal(t, "newest_first", FoldNewestFirst.String())
}
