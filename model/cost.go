package model

import (
	"log/slog"
	"maps"
	"sync"

	"github.com/randalmurphal/ltmkit/provider"
)

// Usage tracks token usage for a model family.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Requests     int
}

// Add adds the given usage to this usage.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.Requests += other.Requests
}

// TotalTokens returns the total tokens used.
func (u *Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Pricing holds per-million-token pricing for a family.
type Pricing struct {
	InputPerMillion  float64 `json:"input_per_million" yaml:"input_per_million" toml:"input_per_million" validate:"gte=0"`
	OutputPerMillion float64 `json:"output_per_million" yaml:"output_per_million" toml:"output_per_million" validate:"gte=0"`
}

// Cost returns the USD cost of the given token counts.
func (p Pricing) Cost(input, output int) float64 {
	return float64(input)/1_000_000*p.InputPerMillion + float64(output)/1_000_000*p.OutputPerMillion
}

// Prices contains list pricing in USD per million tokens.
var Prices = map[Family]Pricing{
	GPT4o:          {InputPerMillion: 5.0, OutputPerMillion: 15.0},
	GPT4oMini:      {InputPerMillion: 0.15, OutputPerMillion: 0.6},
	GPT4Turbo:      {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	GPT4Preview:    {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	GPT4:           {InputPerMillion: 30.0, OutputPerMillion: 60.0},
	GPT35Turbo:     {InputPerMillion: 0.5, OutputPerMillion: 1.5},
	O1:             {InputPerMillion: 15.0, OutputPerMillion: 60.0},
	O1Mini:         {InputPerMillion: 3.0, OutputPerMillion: 12.0},
	O3Mini:         {InputPerMillion: 1.1, OutputPerMillion: 4.4},
	Claude3Opus:    {InputPerMillion: 15.0, OutputPerMillion: 75.0},
	Claude3Sonnet:  {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	Claude3Haiku:   {InputPerMillion: 0.25, OutputPerMillion: 1.25},
	Claude35Sonnet: {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	Gemini15Pro:    {InputPerMillion: 3.5, OutputPerMillion: 10.5},
	Gemini15Flash:  {InputPerMillion: 0.35, OutputPerMillion: 1.05},
}

// CostTracker converts provider-reported usage into USD and accumulates it
// for one conversation session. It is safe for concurrent use.
type CostTracker struct {
	mu     sync.RWMutex
	prices map[Family]Pricing
	totals map[Family]Usage
	usd    float64
	warned map[Family]bool
	logger *slog.Logger
}

// CostOption configures a CostTracker.
type CostOption func(*CostTracker)

// WithPrices replaces the price table. The map is copied.
func WithPrices(prices map[Family]Pricing) CostOption {
	return func(t *CostTracker) {
		t.prices = maps.Clone(prices)
		if t.prices == nil {
			t.prices = make(map[Family]Pricing)
		}
	}
}

// WithCostLogger sets the logger used for unknown-family warnings.
func WithCostLogger(logger *slog.Logger) CostOption {
	return func(t *CostTracker) {
		t.logger = logger
	}
}

// NewCostTracker creates a new cost tracker using Prices.
func NewCostTracker(opts ...CostOption) *CostTracker {
	t := &CostTracker{
		prices: maps.Clone(Prices),
		totals: make(map[Family]Usage),
		warned: make(map[Family]bool),
		logger: slog.Default().With("component", "cost"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record adds provider-reported usage for the family and returns the
// incremental cost in USD. Unknown families are tracked at zero cost.
func (t *CostTracker) Record(family Family, usage provider.TokenUsage) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.totals[family]
	u.Add(Usage{InputTokens: usage.PromptTokens, OutputTokens: usage.CompletionTokens, Requests: 1})
	t.totals[family] = u

	prices, ok := t.prices[family]
	if !ok {
		if !t.warned[family] {
			t.warned[family] = true
			t.logger.Warn("no pricing for model family, cost not tracked", "family", family)
		}
		return 0
	}

	delta := prices.Cost(usage.PromptTokens, usage.CompletionTokens)
	if delta < 0 {
		delta = 0
	}
	t.usd += delta
	return delta
}

// RecordResponse records the usage of a response, if the provider reported
// any. Responses without usage cost nothing.
func (t *CostTracker) RecordResponse(family Family, resp *provider.Response) float64 {
	if resp == nil || resp.Usage == nil {
		return 0
	}
	return t.Record(family, *resp.Usage)
}

// Total returns the cumulative cost in USD since creation or the last Reset.
func (t *CostTracker) Total() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.usd
}

// SetPricing overrides the pricing for one family. Costs already recorded
// are not repriced.
func (t *CostTracker) SetPricing(family Family, p Pricing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prices[family] = p
	delete(t.warned, family)
}

// Usage returns the usage for a specific family.
func (t *CostTracker) Usage(family Family) Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[family]
}

// Summary returns a copy of all usage totals.
func (t *CostTracker) Summary() map[Family]Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.totals)
}

// TotalUsage returns aggregated usage across all families.
func (t *CostTracker) TotalUsage() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total Usage
	for _, u := range t.totals {
		total.Add(u)
	}
	return total
}

// Reset zeroes the session: usage and cumulative cost.
func (t *CostTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = make(map[Family]Usage)
	t.usd = 0
}
