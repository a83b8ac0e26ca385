package stats

import (
	"sort"

	"viradsbench/domain/analysis"
	"viradsbench/domain/study"
)

// aucCutoffs are the interior thresholds of the empirical ROC curve.
// The score scale is the 1-5 VI-RADS ordinal; cutoff 1 classifies
// everything positive and is omitted as trivial. A coarser curve than a
// full-resolution ROC, kept deliberately: the scale has only five
// categories.
var aucCutoffs = [4]int{2, 3, 4, 5}

// BuildConfusionMatrix classifies every case that appears in cases AND
// carries a usable final score in evals. A reading counts as
// test-positive when its VI-RADS category is at or above cutoff; the
// case is condition-positive when its pathology is muscle-invasive.
// Cases without an evaluation are silently skipped.
func BuildConfusionMatrix(evals study.EvaluationSet, cases []study.Case, cutoff int) analysis.ConfusionMatrix {
	var m analysis.ConfusionMatrix
	for _, c := range cases {
		ev, ok := evals[c.CaseNumber]
		if !ok || !ev.Evaluated() {
			continue
		}

		testPositive := ev.VIRADS.Score.Int() >= cutoff
		switch {
		case testPositive && c.Positive():
			m.TruePositive++
		case testPositive && !c.Positive():
			m.FalsePositive++
		case !testPositive && !c.Positive():
			m.TrueNegative++
		default:
			m.FalseNegative++
		}
	}
	return m
}

// ComputeAccuracyMetrics derives the four diagnostic ratios from a
// matrix and an independently supplied prevalence. PPV/NPV are
// Bayesian-reweighted by that prevalence, which may differ from the
// matrix's own: the analysis can simulate deployment populations with
// different base rates. Degenerate denominators evaluate to 0 by
// documented policy.
func ComputeAccuracyMetrics(m analysis.ConfusionMatrix, prevalence float64) analysis.AccuracyMetrics {
	var metrics analysis.AccuracyMetrics

	if cp := m.ConditionPositives(); cp > 0 {
		metrics.Sensitivity = float64(m.TruePositive) / float64(cp)
	}
	if cn := m.ConditionNegatives(); cn > 0 {
		metrics.Specificity = float64(m.TrueNegative) / float64(cn)
	}

	ppvDenom := metrics.Sensitivity*prevalence + (1-metrics.Specificity)*(1-prevalence)
	if ppvDenom > 0 {
		metrics.PPV = metrics.Sensitivity * prevalence / ppvDenom
	}

	npvDenom := metrics.Specificity*(1-prevalence) + (1-metrics.Sensitivity)*prevalence
	if npvDenom > 0 {
		metrics.NPV = metrics.Specificity * (1 - prevalence) / npvDenom
	}

	return metrics
}

type rocPoint struct {
	fpr float64
	tpr float64
}

// ComputeAUC integrates the empirical ROC polyline over the four
// interior cutoffs, anchored at (0,0) and (1,1). When the evaluated
// subset has no positive or no negative cases, discrimination is
// undefined and the result is 0.5.
func ComputeAUC(evals study.EvaluationSet, cases []study.Case) float64 {
	positives := 0
	negatives := 0
	for _, c := range cases {
		ev, ok := evals[c.CaseNumber]
		if !ok || !ev.Evaluated() {
			continue
		}
		if c.Positive() {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	points := []rocPoint{{0, 0}, {1, 1}}
	for _, cutoff := range aucCutoffs {
		m := BuildConfusionMatrix(evals, cases, cutoff)
		sensitivity := float64(m.TruePositive) / float64(m.ConditionPositives())
		specificity := float64(m.TrueNegative) / float64(m.ConditionNegatives())
		points = append(points, rocPoint{fpr: 1 - specificity, tpr: sensitivity})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].fpr != points[j].fpr {
			return points[i].fpr < points[j].fpr
		}
		return points[i].tpr < points[j].tpr
	})

	// deduplicate identical points before integrating
	deduped := points[:1]
	for _, p := range points[1:] {
		last := deduped[len(deduped)-1]
		if p != last {
			deduped = append(deduped, p)
		}
	}

	auc := 0.0
	for i := 1; i < len(deduped); i++ {
		dx := deduped[i].fpr - deduped[i-1].fpr
		auc += dx * (deduped[i].tpr + deduped[i-1].tpr) / 2
	}
	return auc
}
