package ltm

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/provider"
)

// State is consolidated memory state, normally a JSON object written by
// the model. It is never persisted by this package.
type State string

// EmptyState seeds a fold when the caller has no prior state.
const EmptyState State = "{}"

// FoldOrder is the order in which memories are integrated into state.
type FoldOrder int

const (
	// FoldOldestFirst integrates the oldest memory first, so the most
	// recent memory has the last word on conflicting facts.
	FoldOldestFirst FoldOrder = iota
	// FoldNewestFirst integrates the newest memory first.
	FoldNewestFirst
)

// String returns "oldest_first" or "newest_first".
func (o FoldOrder) String() string {
	if o == FoldNewestFirst {
		return "newest_first"
	}
	return "oldest_first"
}

// ParseFoldOrder parses the String form. Unknown values give FoldOldestFirst
// and false.
func ParseFoldOrder(s string) (FoldOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "newest_first", "newest-first", "newest":
		return FoldNewestFirst, true
	case "oldest_first", "oldest-first", "oldest", "":
		return FoldOldestFirst, true
	}
	return FoldOldestFirst, false
}

// Reconstructor folds memory passages into a consolidated State with one
// completion call per passage.
type Reconstructor struct {
	c *caller
}

// NewReconstructor creates a reconstructor.
func NewReconstructor(client provider.Client, opts ...Option) *Reconstructor {
	return newReconstructor(newCaller(client, newSettings(opts)))
}

func newReconstructor(c *caller) *Reconstructor {
	return &Reconstructor{c: c}
}

// Fold integrates records into seed one at a time. Records are ordered by
// timestamp according to the configured FoldOrder; records with equal
// timestamps keep their input order. Each step sends the current state and
// one passage; the reply becomes the new state. An empty reply keeps the
// previous state. A provider error aborts the fold and no partial state is
// returned. An empty seed means EmptyState.
func (r *Reconstructor) Fold(ctx context.Context, records []memory.Record, seed State) (State, error) {
	s := r.c.s
	if seed == "" {
		seed = EmptyState
	}
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b memory.Record) int {
		if s.fold == FoldNewestFirst {
			return b.Metadata.Timestamp.Compare(a.Metadata.Timestamp)
		}
		return a.Metadata.Timestamp.Compare(b.Metadata.Timestamp)
	})

	system, err := s.prompts.Render(prompt.ReconstructSystem, nil)
	if err != nil {
		return "", err
	}
	family := s.family(ctx, model.TaskReconstruct)

	state := seed
	for i, rec := range ordered {
		current, err := s.prompts.Render(prompt.ReconstructState, map[string]any{"state": string(state)})
		if err != nil {
			return "", err
		}
		integrate, err := s.prompts.Render(prompt.ReconstructIntegrate, map[string]any{"memory": r.c.clip(family, rec.Passage)})
		if err != nil {
			return "", err
		}

		resp, err := r.c.complete(ctx, family, provider.Request{Messages: []provider.Message{
			provider.NewSystemMessage(system),
			provider.NewUserMessage(current),
			provider.NewUserMessage(integrate),
		}})
		if err != nil {
			return "", fmt.Errorf("fold memory %d of %d: %w", i+1, len(ordered), err)
		}

		next := strings.TrimSpace(resp.Content)
		if next == "" {
			s.logger.Warn("empty state from model, keeping previous", "memory", rec.ID)
			continue
		}
		state = State(next)
	}
	return state, nil
}
