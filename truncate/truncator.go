package truncate

import "github.com/randalmurphal/ltmkit/tokens"

// Strategy defines which part of the text survives.
type Strategy int

const (
	// FromEnd removes content from the end.
	FromEnd Strategy = iota

	// FromMiddle removes content from the middle, keeping start and end.
	FromMiddle

	// FromStart removes content from the start.
	FromStart
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case FromMiddle:
		return "middle"
	case FromStart:
		return "start"
	default:
		return "end"
	}
}

// Markers inserted where text was removed.
const (
	DefaultEndMarker    = "..."
	DefaultMiddleMarker = "\n...[content truncated]...\n"
	DefaultStartMarker  = "..."
)

// Truncator clips text to fit within a token limit.
type Truncator struct {
	counter  tokens.Counter
	strategy Strategy
	marker   string
}

// Option configures a Truncator.
type Option func(*Truncator)

// WithCounter sets the token counter. Use ModelCounter.ForFamily to count
// the way the target model does.
func WithCounter(counter tokens.Counter) Option {
	return func(t *Truncator) {
		t.counter = counter
	}
}

// WithMarker sets the text inserted where content was removed.
func WithMarker(marker string) Option {
	return func(t *Truncator) {
		t.marker = marker
	}
}

// New creates a truncator with the given strategy.
func New(strategy Strategy, opts ...Option) *Truncator {
	t := &Truncator{
		counter:  tokens.NewEstimatingCounter(),
		strategy: strategy,
		marker:   DefaultEndMarker,
	}
	switch strategy {
	case FromMiddle:
		t.marker = DefaultMiddleMarker
	case FromStart:
		t.marker = DefaultStartMarker
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Truncate reduces text to at most maxTokens, marker included.
// Returns the result and whether anything was removed. When even the marker
// does not fit, the marker alone is returned.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	budget := maxTokens - t.counter.Count(t.marker)
	if budget <= 0 {
		return t.marker, true
	}

	runes := []rune(text)
	switch t.strategy {
	case FromMiddle:
		return t.keepEnds(runes, budget), true
	case FromStart:
		return t.keepTail(runes, budget), true
	default:
		return t.keepHead(runes, budget), true
	}
}

// TruncateAll clips each text independently. The input is not modified.
func (t *Truncator) TruncateAll(texts []string, maxTokens int) []string {
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i], _ = t.Truncate(s, maxTokens)
	}
	return out
}

// Strategy returns the truncator's strategy.
func (t *Truncator) Strategy() Strategy {
	return t.strategy
}

// Marker returns the removal marker.
func (t *Truncator) Marker() string {
	return t.marker
}
