package memory

import (
	"time"
)

// ID is an opaque, stable record handle.
type ID string

// Metadata is stored alongside each passage.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Keywords  Keywords  `json:"keywords"`
}

// Record is one stored passage. Relevance and Distance are set by
// Store.Retrieve for the query that produced the record; they are zero on
// records that were not retrieved.
type Record struct {
	ID        ID       `json:"id"`
	Passage   string   `json:"passage"`
	Metadata  Metadata `json:"metadata"`
	Relevance float64  `json:"relevance,omitempty"`
	Distance  float64  `json:"distance,omitempty"`
}

// RankedRecord is a Record with its position in ranked order.
// Lower ranks sort first; equal Distance shares a RelevanceRank and equal
// timestamps share a RecencyRank.
type RankedRecord struct {
	Record
	RelevanceRank int
	RecencyRank   int
}

// Passages returns the passage text of each record, in order.
func Passages(ranked []RankedRecord) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Passage
	}
	return out
}

// IDs returns the ID of each record, in order.
func IDs(ranked []RankedRecord) []ID {
	out := make([]ID, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}
