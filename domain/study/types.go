package study

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"viradsbench/domain/core"
)

// Stage is the pathology T-stage established for a case.
type Stage string

const (
	StageTa  Stage = "Ta"
	StageTis Stage = "Tis"
	StageT1  Stage = "T1"
	StageT2  Stage = "T2"
	StageT3  Stage = "T3"
	StageT4  Stage = "T4"
)

// ParseStage parses a pathology stage label (case-insensitive).
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ta":
		return StageTa, nil
	case "tis", "cis":
		return StageTis, nil
	case "t1":
		return StageT1, nil
	case "t2":
		return StageT2, nil
	case "t3":
		return StageT3, nil
	case "t4":
		return StageT4, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidStage, s)
}

// MuscleInvasive reports whether the stage is T2 or higher.
// This is the condition-positive flag for all diagnostic metrics.
func (s Stage) MuscleInvasive() bool {
	switch s {
	case StageT2, StageT3, StageT4:
		return true
	}
	return false
}

// Case is a single clinical case in the training set.
// CaseNumber ordering is meaningful: the partial-subset analysis slices
// the first K% of a reader's evaluated cases by ascending number.
type Case struct {
	CaseNumber int   `json:"case_number" db:"case_number"`
	Pathology  Stage `json:"pathology" db:"pathology"`
}

// Positive reports whether the case is condition-positive (muscle-invasive).
func (c Case) Positive() bool {
	return c.Pathology.MuscleInvasive()
}

// Score is an ordinal 1-5 reading score. The zero value means "not yet
// scored" and is never a valid category; aggregation must go through
// Scored() rather than comparing against 0.
type Score int

const Unscored Score = 0

// Scored reports whether the score holds a valid 1-5 category.
func (s Score) Scored() bool {
	return s >= 1 && s <= 5
}

// Int returns the raw ordinal value (0 when unscored).
func (s Score) Int() int {
	return int(s)
}

// ParseScore validates an integer into a Score, accepting 0 as unscored.
func ParseScore(v int) (Score, error) {
	if v < 0 || v > 5 {
		return Unscored, fmt.Errorf("%w: %d", core.ErrInvalidScore, v)
	}
	return Score(v), nil
}

// Confidence is the reader's 1-5 confidence in a sub-score.
type Confidence int

// ImageQuality is the 1-3 ordinal quality of the case's imaging.
type ImageQuality int

// SubScore pairs an ordinal score with the reader's confidence in it.
type SubScore struct {
	Score      Score      `json:"score" db:"score"`
	Confidence Confidence `json:"confidence" db:"confidence"`
}

// Evaluation is one reader's reading of one case. The VIRADS sub-score
// is the overall category used downstream for classification; a case
// counts as evaluated only when VIRADS.Score.Scored() is true.
type Evaluation struct {
	ReaderID    core.ReaderID `json:"reader_id" db:"reader_id"`
	CaseNumber  int           `json:"case_number" db:"case_number"`
	T2W         SubScore      `json:"t2w"`
	DWI         SubScore      `json:"dwi"`
	DCE         SubScore      `json:"dce"`
	VIRADS      SubScore      `json:"virads"`
	Quality     ImageQuality  `json:"quality" db:"quality"`
	ReadingTime time.Duration `json:"reading_time" db:"reading_time"`
}

// Evaluated reports whether this evaluation carries a usable final score.
func (e Evaluation) Evaluated() bool {
	return e.VIRADS.Score.Scored()
}

// ExperienceLevel groups readers for the experience-group timing comparison.
type ExperienceLevel string

const (
	ExperienceResident  ExperienceLevel = "resident"
	ExperienceAttending ExperienceLevel = "attending"
)

// ParseExperienceLevel parses an experience group label.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resident", "trainee":
		return ExperienceResident, nil
	case "attending", "radiologist", "expert":
		return ExperienceAttending, nil
	}
	return "", fmt.Errorf("unknown experience level: %q", s)
}

// Reader is a participant in the training cohort.
type Reader struct {
	ID         core.ReaderID   `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Experience ExperienceLevel `json:"experience" db:"experience"`
	CreatedAt  core.Timestamp  `json:"created_at" db:"created_at"`
}

// EvaluationSet maps case number to the evaluation one reader recorded for it.
type EvaluationSet map[int]Evaluation

// EvaluatedCaseNumbers returns the case numbers with a usable final score,
// in ascending order.
func (s EvaluationSet) EvaluatedCaseNumbers() []int {
	nums := make([]int, 0, len(s))
	for n, ev := range s {
		if ev.Evaluated() {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}
