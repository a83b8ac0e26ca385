package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// Params are the externally supplied knobs for an analysis pass.
// Cutoff is the VI-RADS category at or above which a reading counts as
// test-positive. Prevalence is the assumed deployment-population base
// rate used for PPV/NPV; it may differ from the sample's own prevalence.
type Params struct {
	Cutoff            int     `json:"cutoff"`
	Prevalence        float64 `json:"prevalence"`
	PartialPercentage int     `json:"partial_percentage"`
}

// DefaultParams mirror the common reading-study configuration.
func DefaultParams() Params {
	return Params{Cutoff: 3, Prevalence: 0.5, PartialPercentage: 50}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.Cutoff < 2 || p.Cutoff > 5 {
		return fmt.Errorf("%w: %d", core.ErrInvalidCutoff, p.Cutoff)
	}
	if p.Prevalence < 0 || p.Prevalence > 1 {
		return fmt.Errorf("prevalence must be in [0,1], got %g", p.Prevalence)
	}
	if p.PartialPercentage <= 0 || p.PartialPercentage > 100 {
		return fmt.Errorf("partial percentage must be in (0,100], got %d", p.PartialPercentage)
	}
	return nil
}

// ConfusionMatrix holds classification counts against the ground truth.
// TP+FP+TN+FN always equals the number of cases classified.
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
	FalseNegative int `json:"false_negative"`
}

// Total returns the number of cases the matrix classified.
func (m ConfusionMatrix) Total() int {
	return m.TruePositive + m.FalsePositive + m.TrueNegative + m.FalseNegative
}

// ConditionPositives returns the count of truly positive cases.
func (m ConfusionMatrix) ConditionPositives() int {
	return m.TruePositive + m.FalseNegative
}

// ConditionNegatives returns the count of truly negative cases.
func (m ConfusionMatrix) ConditionNegatives() int {
	return m.TrueNegative + m.FalsePositive
}

// AccuracyMetrics are the four diagnostic ratios, all in [0,1].
// PPV and NPV are prevalence-adjusted, not raw matrix ratios.
type AccuracyMetrics struct {
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	PPV         float64 `json:"ppv"`
	NPV         float64 `json:"npv"`
}

// TestResult is the outcome of a hypothesis test. For the degenerate
// zero-variance t-test the statistic is +Inf with PValue 0; callers that
// format results must handle the infinity explicitly.
type TestResult struct {
	Statistic        float64 `json:"statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
}

// MarshalJSON renders an infinite statistic as the string "+Inf" or
// "-Inf". encoding/json rejects non-finite floats, and the
// zero-variance sentinel must survive the API surface intact.
func (r TestResult) MarshalJSON() ([]byte, error) {
	if !math.IsInf(r.Statistic, 0) {
		type plain TestResult
		return json.Marshal(plain(r))
	}
	stat := "+Inf"
	if r.Statistic < 0 {
		stat = "-Inf"
	}
	return json.Marshal(struct {
		Statistic        string  `json:"statistic"`
		DegreesOfFreedom float64 `json:"degrees_of_freedom"`
		PValue           float64 `json:"p_value"`
	}{stat, r.DegreesOfFreedom, r.PValue})
}

// ReaderSummary is the per-reader output of a full analysis pass.
type ReaderSummary struct {
	ReaderID          core.ReaderID         `json:"reader_id"`
	ReaderName        string                `json:"reader_name"`
	Experience        study.ExperienceLevel `json:"experience"`
	EvaluatedCount    int                   `json:"evaluated_count"`
	FinalMatrix       ConfusionMatrix       `json:"final_matrix"`
	FinalMetrics      AccuracyMetrics       `json:"final_metrics"`
	PartialMatrix     ConfusionMatrix       `json:"partial_matrix"`
	PartialMetrics    AccuracyMetrics       `json:"partial_metrics"`
	FinalAUC          float64               `json:"final_auc"`
	PValueSensitivity float64               `json:"p_value_sensitivity"`
	PValueSpecificity float64               `json:"p_value_specificity"`
}

// GroupSummary aggregates across every reader with at least one
// evaluated case.
type GroupSummary struct {
	Params         Params          `json:"params"`
	Readers        []ReaderSummary `json:"readers"`
	ReaderCount    int             `json:"reader_count"`
	AverageMetrics AccuracyMetrics `json:"average_metrics"`
	AverageAUC     float64         `json:"average_auc"`
}

// ReaderTiming is the per-reader timing summary.
type ReaderTiming struct {
	ReaderID        core.ReaderID `json:"reader_id"`
	EvaluatedCount  int           `json:"evaluated_count"`
	MeanTimePerCase time.Duration `json:"mean_time_per_case"`
	MedianTime      time.Duration `json:"median_time"`
	TotalTime       time.Duration `json:"total_time"`
}

// TimingSummary carries the timing sub-analysis. Test results are nil
// when the underlying samples were too small to test.
type TimingSummary struct {
	Readers             []ReaderTiming `json:"readers"`
	LearningCurveTest   *TestResult    `json:"learning_curve_test,omitempty"`
	PairedReaderTest    *TestResult    `json:"paired_reader_test,omitempty"`
	ExperienceGroupTest *TestResult    `json:"experience_group_test,omitempty"`
}
