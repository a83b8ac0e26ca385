package stats

import (
	"math"

	"viradsbench/domain/analysis"
)

// ZTestProportions runs a pooled two-proportion z-test. Degenerate
// inputs (either total zero, pooled proportion exactly 0 or 1, or zero
// standard error) report p=1.0: no detectable difference, never an
// arithmetic failure.
func ZTestProportions(success1, total1, success2, total2 int) analysis.TestResult {
	noDifference := analysis.TestResult{Statistic: 0, PValue: 1.0}

	if total1 == 0 || total2 == 0 {
		return noDifference
	}

	n1 := float64(total1)
	n2 := float64(total2)
	p1 := float64(success1) / n1
	p2 := float64(success2) / n2

	pooled := float64(success1+success2) / (n1 + n2)
	if pooled == 0 || pooled == 1 {
		return noDifference
	}

	standardError := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if standardError == 0 {
		return noDifference
	}

	z := (p1 - p2) / standardError
	if z == 0 {
		// identical proportions: exactly no evidence, skip the erf
		// approximation so p is 1.0 rather than 1-1e-9
		return noDifference
	}
	return analysis.TestResult{
		Statistic: z,
		PValue:    2 * (1 - NormalCDF(math.Abs(z))),
	}
}
