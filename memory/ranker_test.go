package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func rec(id string, relevance, distance float64, age time.Duration, kws ...string) Record {
	return Record{
		ID:        ID(id),
		Passage:   "passage " + id,
		Relevance: relevance,
		Distance:  distance,
		Metadata:  Metadata{Timestamp: t0.Add(-age), Keywords: NewKeywords(kws...)},
	}
}

func TestRanker_NoKeywordsKeepsAll(t *testing.T) {
	records := []Record{
		rec("low", 0.1, 0.2, 0, "x"),
		rec("high", 0.9, 0.8, 0),
	}

	got := NewRanker().Rank(records, nil)
	require.Len(t, got, 2)
	assert.Equal(t, []ID{"high", "low"}, IDs(got))
}

func TestRanker_FilterByFloorAndKeywords(t *testing.T) {
	records := []Record{
		rec("below-floor", 0.5, 0.9, 0, "food"),
		rec("no-keyword", 0.9, 0.9, 0, "work"),
		rec("match", 0.6, 0.1, 0, "FOOD", "travel"),
	}

	got := NewRanker().Rank(records, Keywords{"Food"})
	assert.Equal(t, []ID{"match"}, IDs(got))
}

func TestRanker_TenRecordsTopTwo(t *testing.T) {
	var records []Record
	for i := range 10 {
		records = append(records, rec(fmt.Sprintf("r%d", i), 0.3, float64(i)/10, time.Duration(i)*time.Hour, "topic"))
	}
	records[2].Relevance = 0.7
	records[5].Relevance = 0.6
	records[8].Relevance = 0.95

	got := Ranker{RelevanceFloor: 0.6, TopK: 2}.Rank(records, NewKeywords("topic"))
	assert.Equal(t, []ID{"r8", "r5"}, IDs(got))
}

func TestRanker_EqualDistanceNewerFirst(t *testing.T) {
	records := []Record{
		rec("older", 1, 0.5, 2*time.Hour),
		rec("newer", 1, 0.5, time.Hour),
		rec("closest", 1, 0.9, 5*time.Hour),
	}

	got := NewRanker().Rank(records, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []ID{"closest", "newer", "older"}, IDs(got))

	assert.Equal(t, 0, got[0].RelevanceRank)
	assert.Equal(t, 1, got[1].RelevanceRank)
	assert.Equal(t, 1, got[2].RelevanceRank)

	assert.Equal(t, 2, got[0].RecencyRank)
	assert.Equal(t, 0, got[1].RecencyRank)
	assert.Equal(t, 1, got[2].RecencyRank)
}

func TestRanker_TopKAndFloorProperties(t *testing.T) {
	var records []Record
	for i := range 50 {
		records = append(records, rec(fmt.Sprintf("r%d", i), float64(i%10)/9, float64(i%7), time.Duration(i)*time.Minute, "k"))
	}
	keywords := NewKeywords("k")

	got := NewRanker().Rank(records, keywords)
	assert.LessOrEqual(t, len(got), DefaultTopK)
	for i, r := range got {
		assert.GreaterOrEqual(t, r.Relevance, DefaultRelevanceFloor)
		if i > 0 {
			prev := got[i-1]
			assert.GreaterOrEqual(t, prev.Distance, r.Distance)
			if prev.Distance == r.Distance {
				assert.False(t, prev.Metadata.Timestamp.Before(r.Metadata.Timestamp))
			}
		}
	}
}

func TestRanker_Empty(t *testing.T) {
	got := NewRanker().Rank([]Record{rec("a", 0.1, 0, 0, "x")}, NewKeywords("x"))
	assert.Empty(t, got)
	assert.Empty(t, Passages(got))
}
