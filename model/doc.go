// Package model provides model family resolution, pricing, cost tracking,
// task-based model selection and bounded retry policies.
//
// # Families
//
// Provider model identifiers are resolved to a Family through a fixed alias
// map, so "claude-3-opus" and "claude-3-opus-20240229" price and count the
// same way:
//
//	f := model.Resolve("claude-3-opus")   // model.Claude3Opus
//	limit := model.ContextWindow(f)       // 200000
//
// # Cost Tracking
//
//	tracker := model.NewCostTracker()
//	delta := tracker.Record(model.GPT4o, resp.Usage)
//	total := tracker.Total()
//
// Unknown families cost nothing and log a warning; they never fail.
//
// # Model Selection
//
//	selector := model.NewSelector(
//	    model.WithDefaultModel(model.GPT4o),
//	    model.WithFastModel(model.GPT35Turbo),
//	)
//	m := selector.Select(model.TaskKeywords)
//
// # Retry Policies
//
// Every loop that talks to a model is bounded by a RetryPolicy:
//
//	state := model.NewRetryState(model.DefaultRetry, model.GPT4o)
//	for !state.Exhausted() {
//	    if err := step(state.CurrentModel); err == nil {
//	        break
//	    }
//	    state.RecordFailure(err) // may escalate to the next model
//	}
package model
