package conversation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/provider"
	"github.com/randalmurphal/ltmkit/tokens"
)

// MessageCounter counts a message list for a model family.
// *tokens.ModelCounter implements it.
type MessageCounter interface {
	CountMessages(family model.Family, msgs []provider.Message) int
}

// ErrOverflow indicates a context that still exceeds its budget after
// trimming to the newest message.
var ErrOverflow = errors.New("context exceeds token budget")

// OverflowError reports an over-budget context returned by FitChecked.
type OverflowError struct {
	Tokens    int
	MaxTokens int
	Messages  int
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: %d tokens in %d messages, budget %d", ErrOverflow, e.Tokens, e.Messages, e.MaxTokens)
}

// Unwrap returns ErrOverflow and provider.ErrContextTooLong.
func (e *OverflowError) Unwrap() []error {
	return []error{ErrOverflow, provider.ErrContextTooLong}
}

// Fit trims msgs to the budget. A leading system message is pinned. The
// oldest remaining messages are evicted one at a time while
// reserve + budget.ResponseReserve + count exceeds budget.MaxTokens and more
// than one unpinned message is left.
//
// The returned count includes both reserves. It may exceed MaxTokens when
// the newest message alone does not fit; callers decide whether to warn.
// A non-positive MaxTokens keeps only the newest message (and the pinned one).
// The input slice is never modified.
func Fit(msgs []provider.Message, budget tokens.TokenBudget, reserve int, counter MessageCounter) ([]provider.Message, int) {
	reserve += budget.ResponseReserve

	var pinned []provider.Message
	rest := msgs
	if len(msgs) > 0 && msgs[0].IsSystem() {
		pinned = msgs[:1]
		rest = msgs[1:]
	}

	if budget.MaxTokens <= 0 && len(rest) > 1 {
		rest = rest[len(rest)-1:]
	}

	assemble := func() []provider.Message {
		out := make([]provider.Message, 0, len(pinned)+len(rest))
		out = append(out, pinned...)
		return append(out, rest...)
	}

	current := assemble()
	used := reserve + counter.CountMessages(budget.ModelFamily, current)
	for used > budget.MaxTokens && len(rest) > 1 {
		rest = rest[1:]
		current = assemble()
		used = reserve + counter.CountMessages(budget.ModelFamily, current)
	}
	return current, used
}

// Trimmer fits contexts with a bound counter and logs overflow.
type Trimmer struct {
	counter MessageCounter
	logger  *slog.Logger
}

// TrimmerOption configures a Trimmer.
type TrimmerOption func(*Trimmer)

// WithLogger sets the logger used for overflow warnings.
func WithLogger(logger *slog.Logger) TrimmerOption {
	return func(t *Trimmer) {
		t.logger = logger
	}
}

// NewTrimmer creates a trimmer counting with counter.
func NewTrimmer(counter MessageCounter, opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		counter: counter,
		logger:  slog.Default().With("component", "trimmer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit trims msgs to the budget and logs a warning when the result is still
// over budget. See the package-level Fit.
func (t *Trimmer) Fit(msgs []provider.Message, budget tokens.TokenBudget) ([]provider.Message, int) {
	out, used := Fit(msgs, budget, 0, t.counter)
	if dropped := len(msgs) - len(out); dropped > 0 {
		t.logger.Debug("context trimmed",
			"family", budget.ModelFamily,
			"dropped", dropped,
			"kept", len(out),
			"tokens", used,
		)
	}
	if used > budget.MaxTokens {
		t.logger.Warn("context over budget after trimming",
			"family", budget.ModelFamily,
			"tokens", used,
			"max_tokens", budget.MaxTokens,
			"messages", len(out),
		)
	}
	return out, used
}

// FitChecked is Fit that also returns an *OverflowError when the result is
// over budget. The trimmed context is returned either way.
func (t *Trimmer) FitChecked(msgs []provider.Message, budget tokens.TokenBudget) ([]provider.Message, int, error) {
	out, used := Fit(msgs, budget, 0, t.counter)
	if used > budget.MaxTokens {
		return out, used, &OverflowError{Tokens: used, MaxTokens: budget.MaxTokens, Messages: len(out)}
	}
	return out, used, nil
}

// Count returns the token count of msgs for the family.
func (t *Trimmer) Count(family model.Family, msgs []provider.Message) int {
	return t.counter.CountMessages(family, msgs)
}
