// Package tokens counts tokens per model family and describes token budgets.
//
// # Counting
//
// ModelCounter is the family-aware counter used for context assembly:
//
//	counter := tokens.NewModelCounter()
//	n := counter.Count(model.GPT4o, tokens.Payload{Messages: msgs})
//
// OpenAI families are counted exactly (o200k_base for gpt-4o and the
// o-series, cl100k_base for gpt-4 and gpt-3.5). Every other family is
// estimated with cl100k_base and scaled by a correction factor. After each
// completion, feed the provider's authoritative prompt count back:
//
//	counter.RecordUsage(family, msgs, resp.Usage)
//
// The factor moves toward observed/raw with a weight that grows with the
// size of the observation, and reported counts add a small bias so they
// lean high. Each ModelCounter keeps its own factors.
//
// Message lists cost MessageOverhead tokens per message on top of content.
//
// # Simple counters
//
// Counter is the single-tokenizer interface. TiktokenCounter counts with a
// BPE encoding; EstimatingCounter uses ~4 characters per token and needs no
// tokenizer data:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// # Budget
//
// TokenBudget bounds an assembled context:
//
//	budget := tokens.NewTokenBudget(model.GPT4o, 16384, 1024)
//	if err := budget.Validate(); err != nil { ... }
package tokens
