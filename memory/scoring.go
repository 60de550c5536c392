package memory

import (
	"cmp"
	"math"
	"regexp"
	"slices"

	"golang.org/x/text/cases"
)

// Okapi BM25 parameters.
const (
	bm25K1      = 1.2
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Terms splits text into case-folded letter/digit runs.
func Terms(text string) []string {
	return termPattern.FindAllString(cases.Fold().String(text), -1)
}

// Score ranks the records that share at least one term with query and
// returns up to k of them, best first, with Relevance and Distance set.
// Records are copied.
//
// Relevance is the Okapi BM25 score normalized by the best score in the
// set, so the top lexical hit has relevance 1.
// Distance is the cosine distance between the term-frequency vectors of
// query and passage, in [0, 1]. Ties on relevance go to the smaller
// distance, then to the newer record.
func Score(records []Record, query string, k int) []Record {
	if k <= 0 || len(records) == 0 {
		return nil
	}

	queryTF := termFrequencies(Terms(query))
	docs := make([]map[string]int, len(records))
	lengths := make([]int, len(records))
	docFreq := make(map[string]int)
	total := 0
	for i, r := range records {
		terms := Terms(r.Passage)
		docs[i] = termFrequencies(terms)
		lengths[i] = len(terms)
		total += len(terms)
		for term := range docs[i] {
			docFreq[term]++
		}
	}
	avgLen := float64(total) / float64(len(records))

	n := float64(len(records))
	raw := make([]float64, len(records))
	best := 0.0
	for i := range records {
		for term := range queryTF {
			tf := float64(docs[i][term])
			if tf == 0 {
				continue
			}
			df := float64(docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			if idf <= 0 {
				idf = bm25Epsilon
			}
			denom := tf + bm25K1*(1-bm25B+bm25B*float64(lengths[i])/avgLen)
			raw[i] += idf * tf * (bm25K1 + 1) / denom
		}
		best = max(best, raw[i])
	}

	if best == 0 {
		return nil
	}
	out := make([]Record, 0, len(records))
	for i, r := range records {
		if raw[i] == 0 {
			continue
		}
		r.Relevance = raw[i] / best
		r.Distance = max(0, 1-cosine(queryTF, docs[i]))
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		if c := cmp.Compare(b.Relevance, a.Relevance); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return b.Metadata.Timestamp.Compare(a.Metadata.Timestamp)
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

func termFrequencies(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf
}

// cosine returns the cosine similarity of two sparse vectors, 0 when
// either is empty.
func cosine(a, b map[string]int) float64 {
	var dot, na, nb float64
	for term, x := range a {
		na += float64(x * x)
		if y, ok := b[term]; ok {
			dot += float64(x * y)
		}
	}
	for _, y := range b {
		nb += float64(y * y)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
