// Package conversation keeps the chronological message log of a session and
// fits it into a token budget.
//
// Fit evicts the oldest messages until the context fits, never touching a
// leading system message and never removing the most recent message:
//
//	trimmed, used := conversation.Fit(msgs, budget, 0, counter)
//	if !budget.Fits(used) {
//	    // still over: only the newest turn (plus system prompt) remains
//	}
//
// Trimmer wraps Fit with a bound counter and logs overflow.
package conversation
