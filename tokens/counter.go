package tokens

import "unicode/utf8"

// DefaultCharsPerToken is the rune-to-token ratio of EstimatingCounter.
const DefaultCharsPerToken = 4.0

// Counter counts tokens for text under a single tokenizer.
type Counter interface {
	Count(text string) int
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter approximates counts from the rune length. It is used
// when no BPE encoding can be loaded for a family.
type EstimatingCounter struct {
	CharsPerToken float64
}

// NewEstimatingCounter returns a counter at DefaultCharsPerToken.
func NewEstimatingCounter() *EstimatingCounter {
	return NewEstimatingCounterWithRatio(DefaultCharsPerToken)
}

// NewEstimatingCounterWithRatio returns a counter at the given ratio.
// Non-positive ratios fall back to DefaultCharsPerToken.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count returns runes/CharsPerToken rounded to the nearest integer.
func (c *EstimatingCounter) Count(text string) int {
	return int(float64(utf8.RuneCountInString(text))/c.CharsPerToken + 0.5)
}

// FitsInLimit reports whether Count(text) <= limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// EstimateTokens counts text with a default EstimatingCounter.
func EstimateTokens(text string) int {
	return NewEstimatingCounter().Count(text)
}
