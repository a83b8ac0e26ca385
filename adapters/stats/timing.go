package stats

import (
	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// ReadingSeconds returns the reading times (seconds) of a reader's
// evaluated cases in ascending case order.
func ReadingSeconds(evals study.EvaluationSet) []float64 {
	nums := evals.EvaluatedCaseNumbers()
	times := make([]float64, 0, len(nums))
	for _, n := range nums {
		times = append(times, evals[n].ReadingTime.Seconds())
	}
	return times
}

// LearningCurveTest pairs, per reader, the mean reading time of the
// early partial subset against the mean of the remaining cases, then
// runs a paired t-test across readers. Readers without cases on both
// sides of the split are excluded; the second return value is false
// when fewer than two readers remain.
func LearningCurveTest(evalsByReader map[core.ReaderID]study.EvaluationSet, percentage int) (analysis.TestResult, bool) {
	var early, late []float64
	for _, evals := range evalsByReader {
		times := ReadingSeconds(evals)
		if len(times) < 2 {
			continue
		}
		split := len(PartialCaseNumbers(evals, percentage))
		if split == 0 || split >= len(times) {
			continue
		}
		early = append(early, Mean(times[:split]))
		late = append(late, Mean(times[split:]))
	}
	return TTestPaired(early, late)
}

// PartialCaseNumbers returns the case numbers of the first percentage%
// of a reader's evaluated cases, ascending.
func PartialCaseNumbers(evals study.EvaluationSet, percentage int) []int {
	evaluated := evals.EvaluatedCaseNumbers()
	if len(evaluated) == 0 {
		return nil
	}
	count := (len(evaluated)*percentage + 99) / 100
	if count > len(evaluated) {
		count = len(evaluated)
	}
	return evaluated[:count]
}

// PairedReaderTimeTest compares two readers' per-case reading times,
// paired over the cases both evaluated. False when fewer than two
// common cases exist.
func PairedReaderTimeTest(a, b study.EvaluationSet) (analysis.TestResult, bool) {
	var timesA, timesB []float64
	for _, n := range a.EvaluatedCaseNumbers() {
		evB, ok := b[n]
		if !ok || !evB.Evaluated() {
			continue
		}
		timesA = append(timesA, a[n].ReadingTime.Seconds())
		timesB = append(timesB, evB.ReadingTime.Seconds())
	}
	return TTestPaired(timesA, timesB)
}

// ExperienceGroupTimeTest runs an independent t-test on per-reader mean
// reading times between the two experience groups.
func ExperienceGroupTimeTest(readers []study.Reader, evalsByReader map[core.ReaderID]study.EvaluationSet) (analysis.TestResult, bool) {
	var residents, attendings []float64
	for _, r := range readers {
		times := ReadingSeconds(evalsByReader[r.ID])
		if len(times) == 0 {
			continue
		}
		switch r.Experience {
		case study.ExperienceResident:
			residents = append(residents, Mean(times))
		case study.ExperienceAttending:
			attendings = append(attendings, Mean(times))
		}
	}
	return TTestIndependent(residents, attendings)
}
