package model

import (
	"fmt"

	"github.com/randalmurphal/ltmkit/provider"
)

// RetryPolicy bounds a model-driven loop.
type RetryPolicy struct {
	// MaxAttempts is the number of consecutive malformed responses tolerated
	// for one iteration before giving up.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts" validate:"gte=1"`

	// MaxIterations caps the total number of tool-loop iterations.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" toml:"max_iterations" validate:"gte=1"`

	// Escalation lists families in ascending order of capability. After a
	// failure the loop moves to the next family. Empty means retry the same
	// family.
	Escalation []Family `json:"escalation,omitempty" yaml:"escalation,omitempty" toml:"escalation,omitempty"`
}

// DefaultRetry is the standard policy: three attempts per iteration, eight
// iterations per loop, no escalation.
var DefaultRetry = RetryPolicy{
	MaxAttempts:   3,
	MaxIterations: 8,
}

// EscalatingRetry retries on a more capable family after each failure.
var EscalatingRetry = RetryPolicy{
	MaxAttempts:   3,
	MaxIterations: 8,
	Escalation:    []Family{GPT35Turbo, GPT4o, GPT4Turbo},
}

// WithDefaults fills zero fields from DefaultRetry.
func (p RetryPolicy) WithDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultRetry.MaxIterations
	}
	return p
}

// Next returns the family to use after a failure.
// Returns the next family in the chain and whether to continue.
// If max attempts are reached, returns ("", false).
func (p *RetryPolicy) Next(current Family, attempt int) (Family, bool) {
	if attempt >= p.MaxAttempts {
		return "", false
	}

	if len(p.Escalation) == 0 {
		return current, true
	}

	idx := -1
	for i, f := range p.Escalation {
		if f == current {
			idx = i
			break
		}
	}

	// Not in chain: start at the bottom.
	if idx < 0 {
		return p.Escalation[0], true
	}

	if idx >= len(p.Escalation)-1 {
		return current, true
	}

	return p.Escalation[idx+1], true
}

// CanEscalate returns true if the current family can escalate to a higher tier.
func (p *RetryPolicy) CanEscalate(current Family) bool {
	for i, f := range p.Escalation {
		if f == current {
			return i < len(p.Escalation)-1
		}
	}
	return false
}

// RetryState tracks consecutive failures of one loop iteration.
type RetryState struct {
	Policy       RetryPolicy
	CurrentModel Family
	Attempt      int
	LastError    error
}

// NewRetryState creates a retry state starting at the given family.
// Zero policy fields are filled from DefaultRetry.
func NewRetryState(policy RetryPolicy, start Family) *RetryState {
	return &RetryState{
		Policy:       policy.WithDefaults(),
		CurrentModel: start,
	}
}

// RecordFailure records a failed attempt and escalates if possible.
// Returns true if there are more attempts available.
func (s *RetryState) RecordFailure(err error) bool {
	s.Attempt++
	s.LastError = err

	next, ok := s.Policy.Next(s.CurrentModel, s.Attempt)
	if !ok {
		return false
	}
	s.CurrentModel = next
	return true
}

// Succeeded clears the failure count after a well-formed response. The
// current family is kept.
func (s *RetryState) Succeeded() {
	s.Attempt = 0
	s.LastError = nil
}

// Exhausted returns true if all attempts have been used.
func (s *RetryState) Exhausted() bool {
	return s.Attempt >= s.Policy.MaxAttempts
}

// Err returns an error wrapping provider.ErrRetriesExhausted. The last
// failure appears in the message but is not wrapped: an exhausted loop is
// never malformed output to an enclosing loop.
func (s *RetryState) Err() error {
	if s.LastError == nil {
		return fmt.Errorf("%w after %d attempts", provider.ErrRetriesExhausted, s.Attempt)
	}
	return fmt.Errorf("%w after %d attempts: %v", provider.ErrRetriesExhausted, s.Attempt, s.LastError)
}
