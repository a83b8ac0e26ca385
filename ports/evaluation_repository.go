package ports

import (
	"context"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// EvaluationRepository persists per-reader case evaluations.
type EvaluationRepository interface {
	// Upsert stores an evaluation, replacing any prior reading of the
	// same case by the same reader.
	Upsert(ctx context.Context, ev *study.Evaluation) error
	GetByReader(ctx context.Context, id core.ReaderID) (study.EvaluationSet, error)
	// GetAll returns every stored evaluation grouped by reader.
	GetAll(ctx context.Context) (map[core.ReaderID]study.EvaluationSet, error)
}
