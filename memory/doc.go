// Package memory holds the long-term memory data model, the Store contract
// and the retrieval ranker.
//
// A Store is an append-only passage store: records are added with metadata,
// retrieved by similarity to a query, and removed only by Delete. Every
// retrieved Record carries two independent scores: Relevance in [0, 1] and
// Distance. The Ranker never blends them; it filters on Relevance and
// orders by Distance, then recency.
//
//	store := memory.NewInMemoryStore()
//	id, err := store.Add(ctx, "Lunch with Ana on Friday", memory.Metadata{
//	    Keywords: memory.NewKeywords("Ana", "lunch"),
//	})
//	raw, err := store.Retrieve(ctx, "when is lunch", 100)
//	ranked := memory.NewRanker().Rank(raw, memory.NewKeywords("lunch"))
//
// InMemoryStore is the reference implementation. Package boltstore persists
// records on disk with the same scoring.
package memory
