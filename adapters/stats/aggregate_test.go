package stats

import (
	"math"
	"testing"

	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

func testReader(id string) study.Reader {
	return study.Reader{
		ID:         core.ReaderID(id),
		Name:       id,
		Experience: study.ExperienceResident,
	}
}

func TestPartialCaseSubset(t *testing.T) {
	cases := fourCaseSet()
	evals := study.EvaluationSet{
		1: makeEvaluation(1, 2, 30),
		2: makeEvaluation(2, 4, 30),
		3: makeEvaluation(3, 5, 30),
		4: makeEvaluation(4, 1, 30),
	}

	subset := PartialCaseSubset(evals, cases, 50)
	if len(subset) != 2 {
		t.Fatalf("50%% of 4 evaluated cases = %d, want 2", len(subset))
	}
	if subset[0].CaseNumber != 1 || subset[1].CaseNumber != 2 {
		t.Errorf("subset should be the lowest case numbers, got %+v", subset)
	}

	if got := PartialCaseSubset(evals, cases, 100); len(got) != 4 {
		t.Errorf("100%% subset = %d cases, want 4", len(got))
	}
	// rounds up so a tiny percentage still yields one case
	if got := PartialCaseSubset(evals, cases, 10); len(got) != 1 {
		t.Errorf("10%% of 4 = %d cases, want 1", len(got))
	}
	if got := PartialCaseSubset(study.EvaluationSet{}, cases, 50); got != nil {
		t.Errorf("empty evaluation set should give nil subset, got %+v", got)
	}
}

// When the partial subset is the full set, partial and final proportions
// are identical and both z-tests must report exactly p=1.
func TestAnalyzeReaderFullPartialSubset(t *testing.T) {
	cases := fourCaseSet()
	evals := study.EvaluationSet{
		1: makeEvaluation(1, 2, 30),
		2: makeEvaluation(2, 4, 30),
		3: makeEvaluation(3, 5, 30),
		4: makeEvaluation(4, 1, 30),
	}
	params := analysis.Params{Cutoff: 3, Prevalence: 0.5, PartialPercentage: 100}

	summary := AnalyzeReader(testReader("r1"), cases, evals, params)
	if summary.PValueSensitivity != 1.0 {
		t.Errorf("p_sensitivity = %v, want exactly 1.0", summary.PValueSensitivity)
	}
	if summary.PValueSpecificity != 1.0 {
		t.Errorf("p_specificity = %v, want exactly 1.0", summary.PValueSpecificity)
	}
	if summary.PartialMatrix != summary.FinalMatrix {
		t.Errorf("partial matrix %+v should equal final %+v", summary.PartialMatrix, summary.FinalMatrix)
	}
}

func TestAnalyzeReaderEndToEnd(t *testing.T) {
	cases := fourCaseSet()
	evals := study.EvaluationSet{
		1: makeEvaluation(1, 2, 40),
		2: makeEvaluation(2, 4, 35),
		3: makeEvaluation(3, 5, 30),
		4: makeEvaluation(4, 1, 25),
	}
	params := analysis.DefaultParams()

	summary := AnalyzeReader(testReader("r1"), cases, evals, params)
	if summary.EvaluatedCount != 4 {
		t.Errorf("evaluated count = %d, want 4", summary.EvaluatedCount)
	}
	if summary.FinalMetrics.Sensitivity != 1.0 || summary.FinalMetrics.Specificity != 1.0 {
		t.Errorf("final metrics = %+v, want perfect", summary.FinalMetrics)
	}
	if summary.FinalAUC != 1.0 {
		t.Errorf("final AUC = %v, want 1.0", summary.FinalAUC)
	}
	// partial subset is cases 1 and 2: one TN, one TP
	wantPartial := analysis.ConfusionMatrix{TruePositive: 1, TrueNegative: 1}
	if summary.PartialMatrix != wantPartial {
		t.Errorf("partial matrix = %+v, want %+v", summary.PartialMatrix, wantPartial)
	}
}

func TestAnalyzeReaderNoEvaluations(t *testing.T) {
	summary := AnalyzeReader(testReader("r1"), fourCaseSet(), study.EvaluationSet{}, analysis.DefaultParams())
	if summary.EvaluatedCount != 0 {
		t.Errorf("evaluated count = %d, want 0", summary.EvaluatedCount)
	}
	if summary.FinalAUC != 0.5 {
		t.Errorf("AUC with no data = %v, want 0.5", summary.FinalAUC)
	}
	if summary.PValueSensitivity != 1.0 || summary.PValueSpecificity != 1.0 {
		t.Errorf("empty comparisons should be neutral, got %v/%v", summary.PValueSensitivity, summary.PValueSpecificity)
	}
}

func TestAverageMetrics(t *testing.T) {
	summaries := []analysis.ReaderSummary{
		{
			EvaluatedCount: 4,
			FinalMetrics:   analysis.AccuracyMetrics{Sensitivity: 1.0, Specificity: 0.8, PPV: 0.9, NPV: 0.7},
			FinalAUC:       0.9,
		},
		{
			EvaluatedCount: 4,
			FinalMetrics:   analysis.AccuracyMetrics{Sensitivity: 0.6, Specificity: 1.0, PPV: 0.7, NPV: 0.9},
			FinalAUC:       0.7,
		},
		{EvaluatedCount: 0}, // never read anything, excluded
	}

	avg, auc, counted := AverageMetrics(summaries)
	if counted != 2 {
		t.Fatalf("counted = %d, want 2", counted)
	}
	if math.Abs(avg.Sensitivity-0.8) > 1e-12 {
		t.Errorf("avg sensitivity = %v, want 0.8", avg.Sensitivity)
	}
	if math.Abs(avg.Specificity-0.9) > 1e-12 {
		t.Errorf("avg specificity = %v, want 0.9", avg.Specificity)
	}
	if math.Abs(auc-0.8) > 1e-12 {
		t.Errorf("avg AUC = %v, want 0.8", auc)
	}
}

func TestAverageMetricsEmpty(t *testing.T) {
	avg, auc, counted := AverageMetrics(nil)
	if counted != 0 || auc != 0 || avg != (analysis.AccuracyMetrics{}) {
		t.Errorf("empty input should give zero values, got %+v %v %d", avg, auc, counted)
	}
}
