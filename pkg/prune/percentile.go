package prune

import "sort"

// Percentile computes the p-th percentile (0-100) of values using linear
// interpolation over the sorted multiset, the same definition the article
// count threshold has always used. Returns 0 for an empty input.
func Percentile(values []int, p int) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	if len(sorted) == 1 {
		return float64(sorted[0])
	}

	rank := float64(p) / 100 * float64(len(sorted)-1)
	lower := int(rank)
	if lower >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}

	frac := rank - float64(lower)
	return float64(sorted[lower]) + frac*float64(sorted[lower+1]-sorted[lower])
}
