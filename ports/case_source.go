package ports

import (
	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// CaseSource supplies the case set, the reader roster, and any
// pre-recorded evaluations, typically from an uploaded workbook.
type CaseSource interface {
	ReadCases() ([]study.Case, error)
	ReadReaders() ([]study.Reader, error)
	ReadEvaluations() (map[core.ReaderID]study.EvaluationSet, error)
}

// ResultExporter writes a completed analysis to a tabular artifact.
type ResultExporter interface {
	Export(group analysis.GroupSummary, timing analysis.TimingSummary) error
}
