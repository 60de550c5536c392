package truncate

// longest returns the largest n in [0, max] for which fits(n) holds,
// assuming fits is monotone (true up to some point, then false).
func longest(max int, fits func(n int) bool) int {
	low, high := 0, max
	for low < high {
		mid := (low + high + 1) / 2
		if fits(mid) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

func (t *Truncator) keepHead(runes []rune, budget int) string {
	n := longest(len(runes), func(n int) bool {
		return t.counter.FitsInLimit(string(runes[:n]), budget)
	})
	return string(runes[:n]) + t.marker
}

func (t *Truncator) keepTail(runes []rune, budget int) string {
	n := longest(len(runes), func(n int) bool {
		return t.counter.FitsInLimit(string(runes[len(runes)-n:]), budget)
	})
	return t.marker + string(runes[len(runes)-n:])
}

// keepEnds splits the budget evenly between head and tail.
func (t *Truncator) keepEnds(runes []rune, budget int) string {
	headBudget := budget / 2
	tailBudget := budget - headBudget

	head := longest(len(runes), func(n int) bool {
		return t.counter.FitsInLimit(string(runes[:n]), headBudget)
	})
	rest := runes[head:]
	tail := longest(len(rest), func(n int) bool {
		return t.counter.FitsInLimit(string(rest[len(rest)-n:]), tailBudget)
	})
	return string(runes[:head]) + t.marker + string(rest[len(rest)-tail:])
}
