// Package truncate clips single texts to a token limit.
//
// Context trimming drops whole messages; truncate handles the other case,
// where one passage or tool result is too large on its own. Memory passages
// shown to the model during retrieval and deletion are clipped so that a
// single oversized memory cannot crowd out the rest.
//
//	tr := truncate.New(truncate.FromEnd, truncate.WithCounter(counter.ForFamily(family)))
//	clipped, cut := tr.Truncate(passage, 1000)
//
// Strategies:
//
//   - FromEnd keeps the beginning (default)
//   - FromMiddle keeps both ends, which preserves timestamps at the start and
//     conclusions at the end of a transcript
//   - FromStart keeps the end
//
// Without a counter, the ~4 characters per token estimate is used. Text is
// cut on rune boundaries.
package truncate
