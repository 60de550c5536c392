package memory

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Keywords is a normalized keyword set: case folded, NFKC normalized,
// trimmed, de-duplicated and sorted. Build it with NewKeywords or
// ParseKeywords; a literal may not be normalized.
type Keywords []string

// NormalizeKeyword returns the canonical form of one keyword.
func NormalizeKeyword(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = strings.Trim(s, " \t\r\n\"'`")
	return strings.Join(strings.Fields(s), " ")
}

// NewKeywords normalizes words into a set. Empty entries are dropped.
func NewKeywords(words ...string) Keywords {
	out := make(Keywords, 0, len(words))
	for _, w := range words {
		if w = NormalizeKeyword(w); w != "" {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseKeywords splits a comma separated list, the form models produce in
// tool arguments.
func ParseKeywords(list string) Keywords {
	return NewKeywords(strings.Split(list, ",")...)
}

// Normalized returns k as a normalized set. Useful for keywords decoded
// from storage or built as a literal.
func (k Keywords) Normalized() Keywords {
	return NewKeywords(k...)
}

// Contains reports whether the normalized form of word is in k.
func (k Keywords) Contains(word string) bool {
	_, found := slices.BinarySearch(k, NormalizeKeyword(word))
	return found
}

// Intersects reports whether k and other share a keyword.
// Both sets must be normalized.
func (k Keywords) Intersects(other Keywords) bool {
	i, j := 0, 0
	for i < len(k) && j < len(other) {
		switch strings.Compare(k[i], other[j]) {
		case 0:
			return true
		case -1:
			i++
		default:
			j++
		}
	}
	return false
}

// Union returns the normalized union of k and other.
func (k Keywords) Union(other Keywords) Keywords {
	return NewKeywords(append(slices.Clone(k), other...)...)
}

// String joins the set with ", ".
func (k Keywords) String() string {
	return strings.Join(k, ", ")
}
