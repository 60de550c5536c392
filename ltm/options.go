package ltm

import (
	"context"
	"log/slog"
	"time"

	"github.com/randalmurphal/ltmkit/conversation"
	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/tokens"
	"github.com/randalmurphal/ltmkit/trace"
)

// Defaults shared by the workflows.
const (
	DefaultMaxPromptTokens  = 16384
	DefaultMaxMessageTokens = 1000
	DefaultRetrieveK        = 100
)

// timeLayout stamps user messages and saved exchanges.
const timeLayout = "2006-01-02 15:04:05"

// Option configures the workflows in this package. The same options are
// accepted by every constructor so components built together can share a
// counter, tracker and trace writer.
type Option func(*settings)

type settings struct {
	selector *model.Selector
	counter  *tokens.ModelCounter
	tracker  *model.CostTracker
	tracer   *trace.Writer
	prompts  *prompt.Library
	ranker   memory.Ranker
	retry    model.RetryPolicy
	fold     FoldOrder

	maxPromptTokens  int
	maxMessageTokens int
	retrieveK        int
	temperature      *float64
	writeTools       bool

	now    func() time.Time
	logger *slog.Logger
}

func newSettings(opts []Option) *settings {
	s := &settings{
		selector:         model.NewSelector(),
		ranker:           memory.NewRanker(),
		retry:            model.DefaultRetry,
		fold:             FoldOldestFirst,
		maxPromptTokens:  DefaultMaxPromptTokens,
		maxMessageTokens: DefaultMaxMessageTokens,
		retrieveK:        DefaultRetrieveK,
		now:              time.Now,
		logger:           slog.Default().With("component", "ltm"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.counter == nil {
		s.counter = tokens.NewModelCounter(tokens.WithLogger(s.logger))
	}
	if s.tracker == nil {
		s.tracker = model.NewCostTracker(model.WithCostLogger(s.logger))
	}
	if s.prompts == nil {
		s.prompts = prompt.NewLibrary(nil)
	}
	s.retry = s.retry.WithDefaults()
	return s
}

// family picks the model for task. A selector attached to ctx with
// model.NewContext wins over the configured one.
func (s *settings) family(ctx context.Context, task model.Task) model.Family {
	if sel, ok := model.FromContext(ctx); ok {
		return sel.Select(task)
	}
	return s.selector.Select(task)
}

func (s *settings) trimmer() *conversation.Trimmer {
	return conversation.NewTrimmer(s.counter, conversation.WithLogger(s.logger))
}

// WithSelector sets the task-to-model selector.
func WithSelector(sel *model.Selector) Option {
	return func(s *settings) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithCounter shares a token counter, and with it the correction factors
// learned from provider usage.
func WithCounter(c *tokens.ModelCounter) Option {
	return func(s *settings) { s.counter = c }
}

// WithCostTracker shares a cost tracker.
func WithCostTracker(t *model.CostTracker) Option {
	return func(s *settings) { s.tracker = t }
}

// WithTracer writes a trace file for every completion call.
func WithTracer(w *trace.Writer) Option {
	return func(s *settings) { s.tracer = w }
}

// WithPrompts sets the prompt library.
func WithPrompts(lib *prompt.Library) Option {
	return func(s *settings) { s.prompts = lib }
}

// WithRanker sets the retrieval ranker.
func WithRanker(r memory.Ranker) Option {
	return func(s *settings) { s.ranker = r }
}

// WithRetry bounds every tool loop. Zero fields take DefaultRetry values.
func WithRetry(p model.RetryPolicy) Option {
	return func(s *settings) { s.retry = p }
}

// WithFoldOrder sets the order in which memories are folded into state.
func WithFoldOrder(o FoldOrder) Option {
	return func(s *settings) { s.fold = o }
}

// WithMaxPromptTokens sets the budget every request and the agent history
// are trimmed to. Zero disables request trimming.
func WithMaxPromptTokens(n int) Option {
	return func(s *settings) { s.maxPromptTokens = n }
}

// WithMaxMessageTokens caps tool results and memory passages. Zero
// disables clipping.
func WithMaxMessageTokens(n int) Option {
	return func(s *settings) { s.maxMessageTokens = n }
}

// WithRetrieveK sets how many raw records a memory read asks the store for.
func WithRetrieveK(k int) Option {
	return func(s *settings) {
		if k > 0 {
			s.retrieveK = k
		}
	}
}

// WithTemperature sets the sampling temperature of every request.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = &t }
}

// WithWriteTools offers save_memory and delete_memory to the agent.
func WithWriteTools() Option {
	return func(s *settings) { s.writeTools = true }
}

// WithClock sets the time source for message and memory timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
