// Package excel reads study workbooks and writes analysis exports.
// The workbook layout is two sheets: "Cases" (case number, pathology)
// and "Evaluations" (one row per reader/case reading). A CSV file is
// accepted as a cases-only source.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/ports"
)

const (
	casesSheet       = "Cases"
	evaluationsSheet = "Evaluations"
)

// WorkbookSource reads a study from an xlsx workbook or a cases CSV.
type WorkbookSource struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

var _ ports.CaseSource = (*WorkbookSource)(nil)

// NewWorkbookSource creates a source for the given file path.
func NewWorkbookSource(filePath string) *WorkbookSource {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &WorkbookSource{filePath: filePath, fileType: fileType}
}

// ReadCases reads the case set.
func (s *WorkbookSource) ReadCases() ([]study.Case, error) {
	rows, err := s.readRows(casesSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("cases sheet must have a header row and at least one case")
	}

	cases := make([]study.Case, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid case number %q", i+2, row[0])
		}
		stage, err := study.ParseStage(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cases = append(cases, study.Case{CaseNumber: number, Pathology: stage})
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].CaseNumber < cases[j].CaseNumber })
	log.Printf("[WorkbookSource] Read %d cases from %s", len(cases), s.filePath)
	return cases, nil
}

// ReadReaders derives the reader roster from the evaluations sheet.
// A CSV source carries no evaluations and yields an empty roster.
func (s *WorkbookSource) ReadReaders() ([]study.Reader, error) {
	if s.fileType == "csv" {
		return nil, nil
	}
	rows, err := s.readRows(evaluationsSheet)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.ReaderID]bool)
	var readers []study.Reader
	for i, row := range rows {
		if i == 0 || len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		id := core.ReaderID(strings.TrimSpace(row[0]))
		if seen[id] {
			continue
		}
		seen[id] = true

		experience, err := study.ParseExperienceLevel(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		readers = append(readers, study.Reader{
			ID:         id,
			Name:       id.String(),
			Experience: experience,
			CreatedAt:  core.Now(),
		})
	}
	return readers, nil
}

// ReadEvaluations reads every recorded reading grouped by reader.
func (s *WorkbookSource) ReadEvaluations() (map[core.ReaderID]study.EvaluationSet, error) {
	if s.fileType == "csv" {
		return map[core.ReaderID]study.EvaluationSet{}, nil
	}
	rows, err := s.readRows(evaluationsSheet)
	if err != nil {
		return nil, err
	}

	out := make(map[core.ReaderID]study.EvaluationSet)
	for i, row := range rows {
		if i == 0 || len(row) < 13 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		ev, err := parseEvaluationRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if out[ev.ReaderID] == nil {
			out[ev.ReaderID] = study.EvaluationSet{}
		}
		out[ev.ReaderID][ev.CaseNumber] = ev
	}

	log.Printf("[WorkbookSource] Read evaluations for %d readers from %s", len(out), s.filePath)
	return out, nil
}

// Evaluations sheet columns:
// Reader | Experience | Case | T2W | T2W Conf | DWI | DWI Conf |
// DCE | DCE Conf | VIRADS | VIRADS Conf | Quality | Seconds
func parseEvaluationRow(row []string) (study.Evaluation, error) {
	caseNumber, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return study.Evaluation{}, fmt.Errorf("invalid case number %q", row[2])
	}

	scores := make([]study.SubScore, 4)
	for i := 0; i < 4; i++ {
		scoreCol, confCol := 3+2*i, 4+2*i
		score, err := parseScoreCell(row[scoreCol])
		if err != nil {
			return study.Evaluation{}, err
		}
		conf, err := parseIntCell(row[confCol])
		if err != nil {
			return study.Evaluation{}, err
		}
		scores[i] = study.SubScore{Score: score, Confidence: study.Confidence(conf)}
	}

	quality, err := parseIntCell(row[11])
	if err != nil {
		return study.Evaluation{}, err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(row[12]), 64)
	if err != nil {
		return study.Evaluation{}, fmt.Errorf("invalid reading seconds %q", row[12])
	}

	return study.Evaluation{
		ReaderID:    core.ReaderID(strings.TrimSpace(row[0])),
		CaseNumber:  caseNumber,
		T2W:         scores[0],
		DWI:         scores[1],
		DCE:         scores[2],
		VIRADS:      scores[3],
		Quality:     study.ImageQuality(quality),
		ReadingTime: time.Duration(seconds * float64(time.Second)),
	}, nil
}

func parseScoreCell(cell string) (study.Score, error) {
	v, err := parseIntCell(cell)
	if err != nil {
		return study.Unscored, err
	}
	return study.ParseScore(v)
}

func parseIntCell(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil // blank cell means not recorded
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("invalid integer cell %q", cell)
	}
	return v, nil
}

func (s *WorkbookSource) readRows(sheet string) ([][]string, error) {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("study file not found: %s", s.filePath)
	}

	if s.fileType == "csv" {
		file, err := os.Open(s.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return csv.NewReader(file).ReadAll()
	}

	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	start := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[WorkbookSource] Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}
