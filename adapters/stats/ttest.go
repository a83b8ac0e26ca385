package stats

import (
	"math"

	"viradsbench/domain/analysis"
)

// studentTPValue converts a t statistic into a two-tailed p-value via
// the incomplete-beta relation p = I_{df/(df+t²)}(df/2, 1/2).
func studentTPValue(t, df float64) float64 {
	if math.IsInf(t, 0) {
		return 0
	}
	return RegularizedIncompleteBeta(df/(df+t*t), df/2, 0.5)
}

// TTestIndependent runs a two-sample pooled-variance t-test. The second
// return value is false when either sample has fewer than 2
// observations; there is no result in that case and callers must treat
// the absence distinctly from a computed one.
//
// Two identical (zero-variance) samples yield an infinite statistic
// with p=0: maximal significance rather than a division by zero.
func TTestIndependent(sample1, sample2 []float64) (analysis.TestResult, bool) {
	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	if n1 < 2 || n2 < 2 {
		return analysis.TestResult{}, false
	}

	mean1 := Mean(sample1)
	mean2 := Mean(sample2)
	sd1 := StdDev(sample1)
	sd2 := StdDev(sample2)

	df := n1 + n2 - 2
	pooledVariance := ((n1-1)*sd1*sd1 + (n2-1)*sd2*sd2) / df
	standardError := math.Sqrt(pooledVariance * (1/n1 + 1/n2))

	if standardError == 0 {
		return analysis.TestResult{
			Statistic:        math.Inf(1),
			DegreesOfFreedom: df,
			PValue:           0,
		}, true
	}

	t := (mean1 - mean2) / standardError
	return analysis.TestResult{
		Statistic:        t,
		DegreesOfFreedom: df,
		PValue:           studentTPValue(t, df),
	}, true
}

// TTestPaired runs a paired-samples t-test over the per-pair
// differences. Requires equal-length samples with at least 2 pairs.
// Identical sequences (zero-variance differences) yield the same
// infinite-statistic convention as the independent test.
func TTestPaired(sample1, sample2 []float64) (analysis.TestResult, bool) {
	if len(sample1) != len(sample2) || len(sample1) < 2 {
		return analysis.TestResult{}, false
	}

	diffs := make([]float64, len(sample1))
	for i := range sample1 {
		diffs[i] = sample1[i] - sample2[i]
	}

	n := float64(len(diffs))
	df := n - 1
	meanDiff := Mean(diffs)
	standardError := StdDev(diffs) / math.Sqrt(n)

	if standardError == 0 {
		return analysis.TestResult{
			Statistic:        math.Inf(1),
			DegreesOfFreedom: df,
			PValue:           0,
		}, true
	}

	t := meanDiff / standardError
	return analysis.TestResult{
		Statistic:        t,
		DegreesOfFreedom: df,
		PValue:           studentTPValue(t, df),
	}, true
}
