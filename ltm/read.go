package ltm

import (
	"context"
	"fmt"

	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/provider"
)

// NoMemories is returned by memory reads that find nothing.
const NoMemories = "No memories found"

// Reader answers queries from a memory store.
type Reader struct {
	c             *caller
	store         memory.Store
	reconstructor *Reconstructor
}

// NewReader creates a reader over store.
func NewReader(client provider.Client, store memory.Store, opts ...Option) *Reader {
	return newReader(newCaller(client, newSettings(opts)), store)
}

func newReader(c *caller, store memory.Store) *Reader {
	return &Reader{c: c, store: store, reconstructor: newReconstructor(c)}
}

// Recall retrieves raw candidates for query and ranks them. keywords narrow
// the result as described on memory.Ranker.Rank.
func (r *Reader) Recall(ctx context.Context, query string, keywords memory.Keywords) ([]memory.RankedRecord, error) {
	raw, err := r.store.Retrieve(ctx, query, r.c.s.retrieveK)
	if err != nil {
		return nil, fmt.Errorf("retrieve memories: %w", err)
	}
	ranked := r.c.s.ranker.Rank(raw, keywords)
	r.c.s.logger.Debug("memories recalled",
		"query", query,
		"keywords", keywords.String(),
		"retrieved", len(raw),
		"kept", len(ranked),
	)
	return ranked, nil
}

// Read recalls memories for query and folds them into a state. It returns
// NoMemories when nothing survives ranking.
func (r *Reader) Read(ctx context.Context, query string, keywords memory.Keywords) (string, error) {
	ranked, err := r.Recall(ctx, query, keywords)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return NoMemories, nil
	}

	records := make([]memory.Record, len(ranked))
	for i, rr := range ranked {
		records[i] = rr.Record
	}
	state, err := r.reconstructor.Fold(ctx, records, EmptyState)
	if err != nil {
		return "", err
	}
	return string(state), nil
}

// Loop lets the model query memory repeatedly with read_memory until it
// calls done, and returns the done results. vocabulary lists the keywords
// the model may filter on.
func (r *Reader) Loop(ctx context.Context, query string, vocabulary memory.Keywords) (string, error) {
	s := r.c.s
	open, err := s.prompts.Render(prompt.ReadLoop, map[string]any{
		"query":    query,
		"keywords": []string(vocabulary),
	})
	if err != nil {
		return "", err
	}
	plan, err := s.prompts.Render(prompt.ReadPlan, nil)
	if err != nil {
		return "", err
	}
	act, err := s.prompts.Render(prompt.LoopAct, nil)
	if err != nil {
		return "", err
	}

	loop := &toolLoop{
		c:    r.c,
		task: model.TaskMemoryLoop,
		handlers: Handlers{
			ReadMemory: func(ctx context.Context, args ReadMemoryArgs) (string, error) {
				return r.Read(ctx, args.Query, memory.ParseKeywords(args.Keywords))
			},
			Done: func(_ context.Context, args DoneArgs) (string, error) {
				return args.Results, nil
			},
		},
		planPrompt: plan,
		actPrompt:  act,
	}
	res, err := loop.run(ctx, []provider.Message{provider.NewSystemMessage(open)})
	if err != nil {
		return "", fmt.Errorf("read memory %q: %w", query, err)
	}
	return res.Output, nil
}
