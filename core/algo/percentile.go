// Package algo has the pure statistics behind tier ranking.
package algo

import (
	"math"
	"slices"
)

// DefaultTrimPercent is the share of each tail discarded before ranking.
const DefaultTrimPercent = 5.0

// MinTrimPopulation is the smallest population that gets outlier trimming.
const MinTrimPopulation = 10

// NeutralPercentile is returned when the population carries no information.
const NeutralPercentile = 50.0

// Percentile returns the mid-rank percentile of value within population on a 0..100 scale.
// Populations of MinTrimPopulation or more lose floor(N*trimPercent/100) values from
// each end first. Empty and single-value populations give NeutralPercentile.
// When lowerIsBetter is set the result is inverted.
func Percentile(value float64, population []float64, lowerIsBetter bool, trimPercent float64) float64 {
	sorted := trimPopulation(population, trimPercent)
	n := len(sorted)
	if n <= 1 {
		return NeutralPercentile
	}

	less, equal := 0, 0
	for _, v := range sorted {
		switch {
		case v < value:
			less++
		case v == value:
			equal++
		}
	}

	rank := float64(less) + float64(equal+1)/2
	p := clamp100((rank - 1) / float64(n-1) * 100)
	if lowerIsBetter {
		return 100 - p
	}
	return p
}

// trimPopulation returns a sorted copy of population with outliers removed.
func trimPopulation(population []float64, trimPercent float64) []float64 {
	sorted := slices.Clone(population)
	slices.Sort(sorted)
	if len(sorted) < MinTrimPopulation || trimPercent <= 0 {
		return sorted
	}
	k := int(math.Floor(float64(len(sorted)) * trimPercent / 100))
	if k <= 0 || 2*k >= len(sorted) {
		return sorted
	}
	return sorted[k : len(sorted)-k]
}

// clamp100 bounds v to [0, 100].
func clamp100(v float64) float64 {
	if math.IsNaN(v) {
		return NeutralPercentile
	}
	return math.Max(0, math.Min(100, v))
}
