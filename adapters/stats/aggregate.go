package stats

import (
	"viradsbench/domain/analysis"
	"viradsbench/domain/study"
)

// PartialCaseSubset returns the cases making up the first percentage%
// of the reader's evaluated cases, ordered by ascending case number.
// The count rounds up so a non-empty evaluated set always yields a
// non-empty subset.
func PartialCaseSubset(evals study.EvaluationSet, cases []study.Case, percentage int) []study.Case {
	partial := PartialCaseNumbers(evals, percentage)
	if len(partial) == 0 {
		return nil
	}
	keep := make(map[int]bool, len(partial))
	for _, n := range partial {
		keep[n] = true
	}

	subset := make([]study.Case, 0, len(partial))
	for _, c := range cases {
		if keep[c.CaseNumber] {
			subset = append(subset, c)
		}
	}
	return subset
}

// AnalyzeReader runs the full per-reader analysis: the final matrix,
// metrics and AUC over all evaluated cases, the same restricted to the
// early partial subset, and the z-tests asking whether early
// performance matches eventual full performance (a learning-curve
// proxy). When the partial subset equals the full set both p-values
// are 1.0 by construction.
func AnalyzeReader(reader study.Reader, cases []study.Case, evals study.EvaluationSet, params analysis.Params) analysis.ReaderSummary {
	summary := analysis.ReaderSummary{
		ReaderID:   reader.ID,
		ReaderName: reader.Name,
		Experience: reader.Experience,
	}

	summary.EvaluatedCount = len(evals.EvaluatedCaseNumbers())
	summary.FinalMatrix = BuildConfusionMatrix(evals, cases, params.Cutoff)
	summary.FinalMetrics = ComputeAccuracyMetrics(summary.FinalMatrix, params.Prevalence)
	summary.FinalAUC = ComputeAUC(evals, cases)

	partialCases := PartialCaseSubset(evals, cases, params.PartialPercentage)
	summary.PartialMatrix = BuildConfusionMatrix(evals, partialCases, params.Cutoff)
	summary.PartialMetrics = ComputeAccuracyMetrics(summary.PartialMatrix, params.Prevalence)

	sensTest := ZTestProportions(
		summary.PartialMatrix.TruePositive, summary.PartialMatrix.ConditionPositives(),
		summary.FinalMatrix.TruePositive, summary.FinalMatrix.ConditionPositives(),
	)
	specTest := ZTestProportions(
		summary.PartialMatrix.TrueNegative, summary.PartialMatrix.ConditionNegatives(),
		summary.FinalMatrix.TrueNegative, summary.FinalMatrix.ConditionNegatives(),
	)
	summary.PValueSensitivity = sensTest.PValue
	summary.PValueSpecificity = specTest.PValue

	return summary
}

// AverageMetrics folds per-reader summaries into group-level means.
// Only readers with at least one evaluated case contribute.
func AverageMetrics(summaries []analysis.ReaderSummary) (analysis.AccuracyMetrics, float64, int) {
	var avg analysis.AccuracyMetrics
	var aucSum float64
	counted := 0

	for _, s := range summaries {
		if s.EvaluatedCount == 0 {
			continue
		}
		avg.Sensitivity += s.FinalMetrics.Sensitivity
		avg.Specificity += s.FinalMetrics.Specificity
		avg.PPV += s.FinalMetrics.PPV
		avg.NPV += s.FinalMetrics.NPV
		aucSum += s.FinalAUC
		counted++
	}

	if counted == 0 {
		return analysis.AccuracyMetrics{}, 0, 0
	}
	n := float64(counted)
	avg.Sensitivity /= n
	avg.Specificity /= n
	avg.PPV /= n
	avg.NPV /= n
	return avg, aucSum / n, counted
}
