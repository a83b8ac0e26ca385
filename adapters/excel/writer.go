package excel

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"viradsbench/domain/analysis"
	"viradsbench/internal/errors"
	"viradsbench/ports"
)

const (
	readersSheet = "Readers"
	groupSheet   = "Group"
	timingSheet  = "Timing"
)

// Exporter writes an analysis pass to an xlsx workbook.
type Exporter struct {
	filePath string
}

var _ ports.ResultExporter = (*Exporter)(nil)

// NewExporter creates an exporter targeting the given file path.
func NewExporter(filePath string) *Exporter {
	return &Exporter{filePath: filePath}
}

// Export writes three sheets: per-reader accuracy, the group summary,
// and the timing analysis.
func (e *Exporter) Export(group analysis.GroupSummary, timing analysis.TimingSummary) error {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeReaders(f, group); err != nil {
		return err
	}
	if err := e.writeGroup(f, group); err != nil {
		return err
	}
	if err := e.writeTiming(f, timing); err != nil {
		return err
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(e.filePath); err != nil {
		return errors.ExportError("failed to save workbook", err)
	}
	log.Printf("[Exporter] Wrote %s in %.2fms", e.filePath, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

func (e *Exporter) writeReaders(f *excelize.File, group analysis.GroupSummary) error {
	if _, err := f.NewSheet(readersSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", readersSheet, err)
	}
	header := []interface{}{
		"Reader", "Experience", "Evaluated",
		"TP", "FP", "TN", "FN",
		"Sensitivity", "Specificity", "PPV", "NPV", "AUC",
		"Partial Sensitivity", "Partial Specificity",
		"p (Sensitivity)", "p (Specificity)",
	}
	if err := setRow(f, readersSheet, 1, header); err != nil {
		return err
	}
	for i, r := range group.Readers {
		row := []interface{}{
			r.ReaderName, string(r.Experience), r.EvaluatedCount,
			r.FinalMatrix.TruePositive, r.FinalMatrix.FalsePositive,
			r.FinalMatrix.TrueNegative, r.FinalMatrix.FalseNegative,
			r.FinalMetrics.Sensitivity, r.FinalMetrics.Specificity,
			r.FinalMetrics.PPV, r.FinalMetrics.NPV, r.FinalAUC,
			r.PartialMetrics.Sensitivity, r.PartialMetrics.Specificity,
			r.PValueSensitivity, r.PValueSpecificity,
		}
		if err := setRow(f, readersSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeGroup(f *excelize.File, group analysis.GroupSummary) error {
	if _, err := f.NewSheet(groupSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", groupSheet, err)
	}
	rows := [][]interface{}{
		{"Cutoff", group.Params.Cutoff},
		{"Prevalence", group.Params.Prevalence},
		{"Partial %", group.Params.PartialPercentage},
		{"Readers counted", group.ReaderCount},
		{"Mean sensitivity", group.AverageMetrics.Sensitivity},
		{"Mean specificity", group.AverageMetrics.Specificity},
		{"Mean PPV", group.AverageMetrics.PPV},
		{"Mean NPV", group.AverageMetrics.NPV},
		{"Mean AUC", group.AverageAUC},
	}
	for i, row := range rows {
		if err := setRow(f, groupSheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeTiming(f *excelize.File, timing analysis.TimingSummary) error {
	if _, err := f.NewSheet(timingSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", timingSheet, err)
	}
	header := []interface{}{"Reader", "Evaluated", "Mean (s)", "Median (s)", "Total (s)"}
	if err := setRow(f, timingSheet, 1, header); err != nil {
		return err
	}
	rowIdx := 2
	for _, r := range timing.Readers {
		row := []interface{}{
			r.ReaderID.String(), r.EvaluatedCount,
			r.MeanTimePerCase.Seconds(), r.MedianTime.Seconds(), r.TotalTime.Seconds(),
		}
		if err := setRow(f, timingSheet, rowIdx, row); err != nil {
			return err
		}
		rowIdx++
	}
	rowIdx++
	for _, entry := range []struct {
		label  string
		result *analysis.TestResult
	}{
		{"Learning curve (early vs late)", timing.LearningCurveTest},
		{"Paired reader comparison", timing.PairedReaderTest},
		{"Residents vs attendings", timing.ExperienceGroupTest},
	} {
		if entry.result == nil {
			continue
		}
		row := []interface{}{
			entry.label,
			formatStatistic(entry.result.Statistic),
			entry.result.DegreesOfFreedom,
			entry.result.PValue,
		}
		if err := setRow(f, timingSheet, rowIdx, row); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

// formatStatistic renders the degenerate zero-variance sentinel as text
// so the cell stays readable instead of an xlsx error value.
func formatStatistic(v float64) interface{} {
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return v
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
