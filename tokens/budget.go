package tokens

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/ltmkit/model"
)

// ErrInvalidBudget indicates a TokenBudget that cannot bound a context.
var ErrInvalidBudget = errors.New("invalid token budget")

// TokenBudget bounds the size of an assembled context.
type TokenBudget struct {
	// ModelFamily selects the tokenizer and correction used for counting.
	ModelFamily model.Family `json:"model_family" yaml:"model_family" toml:"model_family"`

	// MaxTokens is the largest allowed context, excluding ResponseReserve.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`

	// ResponseReserve is space kept free for the model's answer.
	ResponseReserve int `json:"response_reserve" yaml:"response_reserve" toml:"response_reserve"`
}

// NewTokenBudget creates a budget for the family.
func NewTokenBudget(family model.Family, maxTokens, reserve int) TokenBudget {
	return TokenBudget{ModelFamily: family, MaxTokens: maxTokens, ResponseReserve: reserve}
}

// Validate checks MaxTokens > 0 and ResponseReserve >= 0.
func (b TokenBudget) Validate() error {
	if b.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens %d must be positive", ErrInvalidBudget, b.MaxTokens)
	}
	if b.ResponseReserve < 0 {
		return fmt.Errorf("%w: response reserve %d is negative", ErrInvalidBudget, b.ResponseReserve)
	}
	return nil
}

// Resolve fills a zero MaxTokens from the family's context window. Budgets
// for unknown families are returned unchanged.
func (b TokenBudget) Resolve() TokenBudget {
	if b.MaxTokens == 0 {
		b.MaxTokens = model.ContextWindow(model.Resolve(string(b.ModelFamily)))
	}
	return b
}

// Fits reports whether used tokens plus the response reserve fit.
func (b TokenBudget) Fits(used int) bool {
	return used+b.ResponseReserve <= b.MaxTokens
}

// Remaining returns the tokens still available after used and the reserve.
func (b TokenBudget) Remaining(used int) int {
	remaining := b.MaxTokens - b.ResponseReserve - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
