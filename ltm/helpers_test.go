package ltm

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/provider"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func toolResp(id, name, args string) provider.Response {
	return provider.Response{ToolCalls: []provider.ToolCall{{ID: id, Name: name, Arguments: json.RawMessage(args)}}}
}

func textResp(content string) provider.Response {
	return provider.Response{Content: content}
}

// fakeStore returns its records verbatim from Retrieve so tests control
// Relevance and Distance.
type fakeStore struct {
	mu      sync.Mutex
	records []memory.Record
	deleted []memory.ID
	err     error
}

func (s *fakeStore) Add(_ context.Context, text string, meta memory.Metadata) (memory.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := memory.NewRecord(text, meta, time.Now)
	if err != nil {
		return "", err
	}
	s.records = append(s.records, rec)
	return rec.ID, nil
}

func (s *fakeStore) Retrieve(_ context.Context, _ string, k int) ([]memory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := slices.Clone(s.records)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id memory.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = slices.Delete(s.records, i, i+1)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return memory.ErrNotFound
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) ids() []memory.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]memory.ID, len(s.records))
	for i, r := range s.records {
		out[i] = r.ID
	}
	return out
}
