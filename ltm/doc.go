// Package ltm runs the long-term memory workflows on top of a completion
// provider and a memory store.
//
// The workflows talk to the model through a closed set of tools
// (ToolName). Every tool loop is bounded by a model.RetryPolicy:
// malformed responses are retried a few times, then the loop fails with
// provider.ErrRetriesExhausted. Provider and store errors are never retried.
//
//   - Reconstructor folds memory passages into one consolidated State.
//   - Reader ranks retrieved memories and folds them (Read), or lets the
//     model query memory until it calls done (Loop).
//   - DeletionPlanner gathers memories about a topic, asks the model which
//     to delete and deletes them by ID.
//   - Agent answers user messages, reading memory through tools, and saves
//     every exchange with model-extracted keywords.
//
// Components built from the same options share a token counter, cost
// tracker and trace writer:
//
//	counter := tokens.NewModelCounter()
//	tracker := model.NewCostTracker()
//	agent := ltm.NewAgent(client, store,
//	    ltm.WithCounter(counter),
//	    ltm.WithCostTracker(tracker),
//	)
//	answer, err := agent.Reply(ctx, "Where did I park?")
package ltm
