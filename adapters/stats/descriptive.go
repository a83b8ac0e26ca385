// Package stats is the pure computation core of the reading-study
// analysis: descriptive statistics, the special-function approximations
// behind the p-values, hypothesis tests, and the diagnostic-accuracy
// engine. Every function is a deterministic transformation of in-memory
// inputs; there is no I/O and no shared state.
package stats

import "math"

// Mean returns the arithmetic mean. An empty input yields 0 rather than
// NaN; downstream aggregation treats the absence of data as a neutral
// value, not an error.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// StdDev returns the unbiased (n-1) sample standard deviation. Fewer
// than 2 observations yield 0: the variance is undefined there and the
// hypothesis tests guard that case separately.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sumSq := 0.0
	for _, v := range xs {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
