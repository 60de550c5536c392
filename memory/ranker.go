package memory

import (
	"cmp"
	"slices"
)

// Ranking defaults.
const (
	DefaultRelevanceFloor = 0.6
	DefaultTopK           = 20
)

// Ranker filters and orders raw retrieval results.
type Ranker struct {
	// RelevanceFloor is the minimum Relevance a record needs when query
	// keywords are given.
	RelevanceFloor float64 `json:"relevance_floor" yaml:"relevance_floor" toml:"relevance_floor" validate:"gte=0,lte=1"`

	// TopK caps the output. Zero or negative means no cap.
	TopK int `json:"top_k" yaml:"top_k" toml:"top_k" validate:"gte=0"`
}

// NewRanker returns a Ranker with the default floor and cap.
func NewRanker() Ranker {
	return Ranker{RelevanceFloor: DefaultRelevanceFloor, TopK: DefaultTopK}
}

// Rank filters, orders and truncates records.
//
// With no keywords every record is kept. Otherwise a record is kept only if
// its Relevance is at least RelevanceFloor and its keywords intersect the
// query keywords. Kept records are ordered by Distance descending, then by
// timestamp descending, with input order breaking full ties. The result is
// truncated to TopK. An empty result is valid.
func (r Ranker) Rank(records []Record, keywords Keywords) []RankedRecord {
	keywords = keywords.Normalized()

	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if len(keywords) > 0 {
			if rec.Relevance < r.RelevanceFloor {
				continue
			}
			if !rec.Metadata.Keywords.Normalized().Intersects(keywords) {
				continue
			}
		}
		kept = append(kept, rec)
	}

	slices.SortStableFunc(kept, func(a, b Record) int {
		if c := cmp.Compare(b.Distance, a.Distance); c != 0 {
			return c
		}
		return b.Metadata.Timestamp.Compare(a.Metadata.Timestamp)
	})

	if r.TopK > 0 && len(kept) > r.TopK {
		kept = kept[:r.TopK]
	}

	out := make([]RankedRecord, len(kept))
	for i, rec := range kept {
		out[i] = RankedRecord{Record: rec}
	}
	assignRanks(out)
	return out
}

// assignRanks sets dense ranks on records already sorted by
// (Distance desc, Timestamp desc).
func assignRanks(out []RankedRecord) {
	for i := range out {
		if i > 0 {
			out[i].RelevanceRank = out[i-1].RelevanceRank
			if out[i].Distance != out[i-1].Distance {
				out[i].RelevanceRank++
			}
		}
	}

	byTime := make([]int, len(out))
	for i := range byTime {
		byTime[i] = i
	}
	slices.SortStableFunc(byTime, func(a, b int) int {
		return out[b].Metadata.Timestamp.Compare(out[a].Metadata.Timestamp)
	})
	for n, idx := range byTime {
		if n > 0 {
			prev := byTime[n-1]
			out[idx].RecencyRank = out[prev].RecencyRank
			if !out[idx].Metadata.Timestamp.Equal(out[prev].Metadata.Timestamp) {
				out[idx].RecencyRank++
			}
		}
	}
}
