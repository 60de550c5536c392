package ltm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/parser"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/provider"
)

// DeletionReport describes one deletion run.
type DeletionReport struct {
	Topic string

	// Gathered is the number of distinct records read during the gather
	// phase.
	Gathered int

	// Candidates is the number of distinct passages offered for selection.
	Candidates int

	// Selected are the candidate indices the model chose.
	Selected []int

	// Deleted are the IDs removed from the store.
	Deleted []memory.ID
}

// Message is the outcome text handed back to the model. It does not
// depend on how many records were deleted.
func (r DeletionReport) Message() string {
	return r.Topic + " memories deleted"
}

// DeletionPlanner removes memories about a topic in two phases. First the
// model reads memory with read_memory until it calls done; every record it
// was shown is kept by ID. Then the distinct gathered passages are listed
// by index and the model picks the ones to delete.
//
// Only gathered records can be deleted. Selection output that does not
// parse deletes nothing.
type DeletionPlanner struct {
	c      *caller
	store  memory.Store
	reader *Reader
	parser *parser.Parser
}

// NewDeletionPlanner creates a planner over store.
func NewDeletionPlanner(client provider.Client, store memory.Store, opts ...Option) *DeletionPlanner {
	return newDeletionPlanner(newCaller(client, newSettings(opts)), store)
}

func newDeletionPlanner(c *caller, store memory.Store) *DeletionPlanner {
	return &DeletionPlanner{c: c, store: store, reader: newReader(c, store), parser: parser.NewParser()}
}

// candidate is one distinct passage and every gathered record holding it.
type candidate struct {
	passage string
	ids     []memory.ID
}

// gathered keeps records by ID in first-seen order. Records shown during a
// loop attempt are staged and only kept once the attempt succeeds.
type gathered struct {
	order   []memory.ID
	records map[memory.ID]memory.Record
	staged  []memory.Record
}

func (g *gathered) stage(rec memory.Record) {
	g.staged = append(g.staged, rec)
}

// settle keeps or drops the staged records.
func (g *gathered) settle(keep bool) {
	if keep {
		for _, rec := range g.staged {
			g.add(rec)
		}
	}
	g.staged = g.staged[:0]
}

func (g *gathered) add(rec memory.Record) {
	if _, ok := g.records[rec.ID]; ok {
		return
	}
	g.order = append(g.order, rec.ID)
	g.records[rec.ID] = rec
}

// candidates groups gathered records by passage text.
func (g *gathered) candidates() []candidate {
	var out []candidate
	index := make(map[string]int)
	for _, id := range g.order {
		text := strings.TrimSpace(g.records[id].Passage)
		if i, ok := index[text]; ok {
			out[i].ids = append(out[i].ids, id)
			continue
		}
		index[text] = len(out)
		out = append(out, candidate{passage: text, ids: []memory.ID{id}})
	}
	return out
}

// Run plans and performs the deletion for topic.
func (p *DeletionPlanner) Run(ctx context.Context, topic string) (DeletionReport, error) {
	report := DeletionReport{Topic: topic}

	g, err := p.gather(ctx, topic)
	if err != nil {
		return report, err
	}
	report.Gathered = len(g.order)

	cands := g.candidates()
	report.Candidates = len(cands)
	if len(cands) == 0 {
		p.c.s.logger.Info("nothing gathered for deletion", "topic", topic)
		return report, nil
	}

	report.Selected, err = p.selectCandidates(ctx, topic, cands)
	if err != nil {
		return report, err
	}

	for _, idx := range report.Selected {
		for _, id := range cands[idx].ids {
			err := p.store.Delete(ctx, id)
			switch {
			case errors.Is(err, memory.ErrNotFound):
				p.c.s.logger.Warn("memory already gone", "id", id)
			case err != nil:
				return report, fmt.Errorf("delete memory %s: %w", id, err)
			default:
				report.Deleted = append(report.Deleted, id)
			}
		}
	}
	p.c.s.logger.Info("memories deleted",
		"topic", topic,
		"gathered", report.Gathered,
		"selected", len(report.Selected),
		"deleted", len(report.Deleted),
	)
	return report, nil
}

// Delete runs the deletion and returns the outcome text.
func (p *DeletionPlanner) Delete(ctx context.Context, topic string) (string, error) {
	report, err := p.Run(ctx, topic)
	if err != nil {
		return "", err
	}
	return report.Message(), nil
}

func (p *DeletionPlanner) gather(ctx context.Context, topic string) (*gathered, error) {
	s := p.c.s
	open, err := s.prompts.Render(prompt.DeleteLoop, map[string]any{"topic": topic})
	if err != nil {
		return nil, err
	}
	act, err := s.prompts.Render(prompt.LoopAct, nil)
	if err != nil {
		return nil, err
	}

	g := &gathered{records: make(map[memory.ID]memory.Record)}
	loop := &toolLoop{
		c:    p.c,
		task: model.TaskMemoryLoop,
		handlers: Handlers{
			ReadMemory: func(ctx context.Context, args ReadMemoryArgs) (string, error) {
				ranked, err := p.reader.Recall(ctx, args.Query, memory.ParseKeywords(args.Keywords))
				if err != nil {
					return "", err
				}
				if len(ranked) == 0 {
					return NoMemories, nil
				}
				lines := make([]string, len(ranked))
				for i, rr := range ranked {
					g.stage(rr.Record)
					lines[i] = fmt.Sprintf("%d %s: %s", i, rr.Metadata.Timestamp.Format(timeLayout), rr.Passage)
				}
				return strings.Join(lines, "\n\n"), nil
			},
			Done: func(_ context.Context, args DoneArgs) (string, error) {
				return args.Results, nil
			},
		},
		actPrompt: act,
		settle:    g.settle,
	}
	if _, err := loop.run(ctx, []provider.Message{provider.NewSystemMessage(open)}); err != nil {
		return nil, fmt.Errorf("gather memories about %q: %w", topic, err)
	}
	return g, nil
}

// selectCandidates asks the model which candidates to delete and returns
// their indices. Unparsable answers select nothing.
func (p *DeletionPlanner) selectCandidates(ctx context.Context, topic string, cands []candidate) ([]int, error) {
	s := p.c.s
	family := s.family(ctx, model.TaskSelectDeletion)

	passages := make([]string, len(cands))
	for i, c := range cands {
		passages[i] = p.c.clip(family, c.passage)
	}
	text, err := s.prompts.Render(prompt.DeleteSelect, map[string]any{"topic": topic, "memories": passages})
	if err != nil {
		return nil, err
	}

	resp, err := p.c.complete(ctx, family, provider.Request{Messages: []provider.Message{provider.NewUserMessage(text)}})
	if err != nil {
		return nil, fmt.Errorf("select memories to delete: %w", err)
	}

	if _, ok := p.parser.List(resp.Content); !ok {
		s.logger.Warn("deletion selection not understood, deleting nothing", "topic", topic)
		return nil, nil
	}
	return p.parser.Indices(resp.Content, len(cands)), nil
}
