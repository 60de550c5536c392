// Package ltmkit gives a chat agent long-term memory: past exchanges are
// saved as passages, recalled by relevance, folded into a consolidated
// state by the model, and deleted by topic on request.
//
// The toolkit is split into packages that can be used on their own:
//
//   - provider: the completion client contract and a scripted mock
//   - model: model families, cost tracking, selection and retry policy
//   - tokens: per-family token counting with learned correction
//   - conversation: history and budget trimming
//   - truncate: token-aware clipping of long text
//   - parser: lists and keywords from loose model output
//   - prompt: the prompt catalog and its {{variable}} templates
//   - memory: records, keywords, ranking and an in-memory store
//   - memory/boltstore: a persistent store on bbolt
//   - ltm: the read, reconstruct, delete and agent workflows
//   - trace: one file per completion call for debugging
//   - config: YAML, TOML and environment configuration
//
// # Quick Start
//
// Counting tokens:
//
//	import "github.com/randalmurphal/ltmkit/tokens"
//	counter := tokens.NewModelCounter()
//	n := counter.CountMessages(model.GPT4o, msgs)
//
// Running an agent over a persistent store:
//
//	import "github.com/randalmurphal/ltmkit/ltm"
//	store, _ := boltstore.Open("memories.db")
//	agent := ltm.NewAgent(client, store)
//	answer, _ := agent.Reply(ctx, "What did I say about Rome?")
//
// Deleting memories by topic:
//
//	planner := ltm.NewDeletionPlanner(client, store)
//	report, _ := planner.Run(ctx, "my old address")
//
// # Design Philosophy
//
//   - The model vendor is the caller's concern; everything talks to provider.Client
//   - Each package usable independently
//   - Sensible defaults with full configurability
//   - Interfaces for extensibility, concrete types for simplicity
package ltmkit
