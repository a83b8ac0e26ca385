package app

import (
	"context"

	"viradsbench/domain/study"
	"viradsbench/internal/errors"
	"viradsbench/internal/testkit"
	"viradsbench/ports"
)

// IngestStudy loads a study from a source into the repositories and
// returns its case set.
func IngestStudy(ctx context.Context, source ports.CaseSource, readers ports.ReaderRepository, evaluations ports.EvaluationRepository) ([]study.Case, error) {
	cases, err := source.ReadCases()
	if err != nil {
		return nil, errors.IngestionError("failed to read cases", err)
	}
	roster, err := source.ReadReaders()
	if err != nil {
		return nil, errors.IngestionError("failed to read readers", err)
	}
	for i := range roster {
		if err := readers.Create(ctx, &roster[i]); err != nil {
			return nil, errors.IngestionError("failed to store reader", err)
		}
	}
	evalsByReader, err := source.ReadEvaluations()
	if err != nil {
		return nil, errors.IngestionError("failed to read evaluations", err)
	}
	for _, set := range evalsByReader {
		for _, ev := range set {
			ev := ev
			if err := evaluations.Upsert(ctx, &ev); err != nil {
				return nil, errors.IngestionError("failed to store evaluation", err)
			}
		}
	}
	return cases, nil
}

// SeedSyntheticCohort fills the repositories with a deterministic
// synthetic cohort and returns its case set.
func SeedSyntheticCohort(ctx context.Context, readers ports.ReaderRepository, evaluations ports.EvaluationRepository) ([]study.Case, error) {
	cohort, err := testkit.GenerateCohort(testkit.DefaultCohortConfig())
	if err != nil {
		return nil, err
	}
	for i := range cohort.Readers {
		if err := readers.Create(ctx, &cohort.Readers[i]); err != nil {
			return nil, err
		}
	}
	for _, set := range cohort.Evaluations {
		for _, ev := range set {
			ev := ev
			if err := evaluations.Upsert(ctx, &ev); err != nil {
				return nil, err
			}
		}
	}
	return cohort.Cases, nil
}
