package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/ports"
)

// EvaluationRepositoryImpl implements EvaluationRepository for PostgreSQL
type EvaluationRepositoryImpl struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new PostgreSQL evaluation repository
func NewEvaluationRepository(db *sqlx.DB) ports.EvaluationRepository {
	return &EvaluationRepositoryImpl{db: db}
}

type evaluationRow struct {
	ReaderID         string  `db:"reader_id"`
	CaseNumber       int     `db:"case_number"`
	T2WScore         int     `db:"t2w_score"`
	T2WConfidence    int     `db:"t2w_confidence"`
	DWIScore         int     `db:"dwi_score"`
	DWIConfidence    int     `db:"dwi_confidence"`
	DCEScore         int     `db:"dce_score"`
	DCEConfidence    int     `db:"dce_confidence"`
	VIRADSScore      int     `db:"virads_score"`
	VIRADSConfidence int     `db:"virads_confidence"`
	Quality          int     `db:"quality"`
	ReadingSeconds   float64 `db:"reading_seconds"`
}

func rowFromDomain(ev *study.Evaluation) evaluationRow {
	return evaluationRow{
		ReaderID:         ev.ReaderID.String(),
		CaseNumber:       ev.CaseNumber,
		T2WScore:         ev.T2W.Score.Int(),
		T2WConfidence:    int(ev.T2W.Confidence),
		DWIScore:         ev.DWI.Score.Int(),
		DWIConfidence:    int(ev.DWI.Confidence),
		DCEScore:         ev.DCE.Score.Int(),
		DCEConfidence:    int(ev.DCE.Confidence),
		VIRADSScore:      ev.VIRADS.Score.Int(),
		VIRADSConfidence: int(ev.VIRADS.Confidence),
		Quality:          int(ev.Quality),
		ReadingSeconds:   ev.ReadingTime.Seconds(),
	}
}

func (row evaluationRow) toDomain() study.Evaluation {
	return study.Evaluation{
		ReaderID:    core.ReaderID(row.ReaderID),
		CaseNumber:  row.CaseNumber,
		T2W:         study.SubScore{Score: study.Score(row.T2WScore), Confidence: study.Confidence(row.T2WConfidence)},
		DWI:         study.SubScore{Score: study.Score(row.DWIScore), Confidence: study.Confidence(row.DWIConfidence)},
		DCE:         study.SubScore{Score: study.Score(row.DCEScore), Confidence: study.Confidence(row.DCEConfidence)},
		VIRADS:      study.SubScore{Score: study.Score(row.VIRADSScore), Confidence: study.Confidence(row.VIRADSConfidence)},
		Quality:     study.ImageQuality(row.Quality),
		ReadingTime: time.Duration(row.ReadingSeconds * float64(time.Second)),
	}
}

// Upsert stores an evaluation, replacing any prior reading of the same
// case by the same reader.
func (r *EvaluationRepositoryImpl) Upsert(ctx context.Context, ev *study.Evaluation) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO evaluations (
			reader_id, case_number,
			t2w_score, t2w_confidence, dwi_score, dwi_confidence,
			dce_score, dce_confidence, virads_score, virads_confidence,
			quality, reading_seconds, updated_at
		) VALUES (
			:reader_id, :case_number,
			:t2w_score, :t2w_confidence, :dwi_score, :dwi_confidence,
			:dce_score, :dce_confidence, :virads_score, :virads_confidence,
			:quality, :reading_seconds, NOW()
		)
		ON CONFLICT (reader_id, case_number) DO UPDATE SET
			t2w_score = EXCLUDED.t2w_score,
			t2w_confidence = EXCLUDED.t2w_confidence,
			dwi_score = EXCLUDED.dwi_score,
			dwi_confidence = EXCLUDED.dwi_confidence,
			dce_score = EXCLUDED.dce_score,
			dce_confidence = EXCLUDED.dce_confidence,
			virads_score = EXCLUDED.virads_score,
			virads_confidence = EXCLUDED.virads_confidence,
			quality = EXCLUDED.quality,
			reading_seconds = EXCLUDED.reading_seconds,
			updated_at = NOW()
	`, rowFromDomain(ev))
	return err
}

// GetByReader returns one reader's evaluations keyed by case number.
func (r *EvaluationRepositoryImpl) GetByReader(ctx context.Context, id core.ReaderID) (study.EvaluationSet, error) {
	var rows []evaluationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT reader_id, case_number,
			t2w_score, t2w_confidence, dwi_score, dwi_confidence,
			dce_score, dce_confidence, virads_score, virads_confidence,
			quality, reading_seconds
		FROM evaluations
		WHERE reader_id = $1
		ORDER BY case_number
	`, id.String())
	if err != nil {
		return nil, err
	}

	set := study.EvaluationSet{}
	for _, row := range rows {
		set[row.CaseNumber] = row.toDomain()
	}
	return set, nil
}

// GetAll returns every stored evaluation grouped by reader.
func (r *EvaluationRepositoryImpl) GetAll(ctx context.Context) (map[core.ReaderID]study.EvaluationSet, error) {
	var rows []evaluationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT reader_id, case_number,
			t2w_score, t2w_confidence, dwi_score, dwi_confidence,
			dce_score, dce_confidence, virads_score, virads_confidence,
			quality, reading_seconds
		FROM evaluations
		ORDER BY reader_id, case_number
	`)
	if err != nil {
		return nil, err
	}

	out := make(map[core.ReaderID]study.EvaluationSet)
	for _, row := range rows {
		id := core.ReaderID(row.ReaderID)
		if out[id] == nil {
			out[id] = study.EvaluationSet{}
		}
		out[id][row.CaseNumber] = row.toDomain()
	}
	return out, nil
}
