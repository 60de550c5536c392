package tokens

import (
	"strings"
	"testing"
)

func TestEstimatingCounter_Ratio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{3, 3},
		{0, DefaultCharsPerToken},
		{-2, DefaultCharsPerToken},
	}
	for _, tt := range tests {
		if got := NewEstimatingCounterWithRatio(tt.ratio).CharsPerToken; got != tt.want {
			t.Errorf("ratio %v: CharsPerToken = %v, want %v", tt.ratio, got, tt.want)
		}
	}
	if got := NewEstimatingCounter().CharsPerToken; got != DefaultCharsPerToken {
		t.Errorf("default CharsPerToken = %v", got)
	}
}

func TestEstimatingCounter_Count(t *testing.T) {
	c := NewEstimatingCounter()
	tests := map[string]struct {
		text string
		want int
	}{
		"empty":          {"", 0},
		"rounds down":    {"abcde", 1},
		"rounds half up": {"abcdef", 2},
		"memory passage": {"I flew to Rome in May", 5},
		"counts runes":   {"日本語のテキスト", 2},
		"long":           {strings.Repeat("x", 400), 100},
	}
	for name, tt := range tests {
		if got := c.Count(tt.text); got != tt.want {
			t.Errorf("%s: Count(%q) = %d, want %d", name, tt.text, got, tt.want)
		}
	}
}

func TestEstimatingCounter_FitsInLimit(t *testing.T) {
	c := NewEstimatingCounterWithRatio(2)
	if !c.FitsInLimit("abcd", 2) {
		t.Error("4 runes at ratio 2 should fit in 2 tokens")
	}
	if c.FitsInLimit("abcdef", 2) {
		t.Error("6 runes at ratio 2 should not fit in 2 tokens")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(strings.Repeat("ab", 10)); got != 5 {
		t.Errorf("EstimateTokens = %d, want 5", got)
	}
}

func TestCounterImplementations(t *testing.T) {
	var _ Counter = (*EstimatingCounter)(nil)
	var _ Counter = (*TiktokenCounter)(nil)
}
