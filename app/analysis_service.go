package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	mstats "github.com/montanaflynn/stats"

	"viradsbench/adapters/stats"
	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/internal"
	"viradsbench/internal/errors"
	"viradsbench/ports"
)

// AnalysisService orchestrates full analysis passes over the current
// cohort. The computation itself lives in adapters/stats and is pure;
// the service only loads inputs, fans out per-reader work, and
// assembles the group view.
type AnalysisService struct {
	readers     ports.ReaderRepository
	evaluations ports.EvaluationRepository
	cases       []study.Case
	logger      *internal.Logger
}

// NewAnalysisService creates an analysis service over a fixed case set.
func NewAnalysisService(readers ports.ReaderRepository, evaluations ports.EvaluationRepository, cases []study.Case) *AnalysisService {
	return &AnalysisService{
		readers:     readers,
		evaluations: evaluations,
		cases:       cases,
		logger:      internal.DefaultLogger,
	}
}

// Cases returns the case set the service analyzes against.
func (s *AnalysisService) Cases() []study.Case {
	return s.cases
}

// RecordEvaluation validates and stores one reading.
func (s *AnalysisService) RecordEvaluation(ctx context.Context, ev *study.Evaluation) error {
	if ev.ReaderID.String() == "" {
		return errors.InvalidInput("reader id is required")
	}
	if !s.hasCase(ev.CaseNumber) {
		return errors.NotFound(fmt.Sprintf("case %d", ev.CaseNumber))
	}
	for _, sub := range []study.SubScore{ev.T2W, ev.DWI, ev.DCE, ev.VIRADS} {
		if _, err := study.ParseScore(sub.Score.Int()); err != nil {
			return errors.InvalidInput(err.Error())
		}
	}
	if ev.ReadingTime < 0 {
		return errors.InvalidInput("reading time cannot be negative")
	}
	return s.evaluations.Upsert(ctx, ev)
}

// ReaderEvaluations returns one reader's recorded evaluations sorted
// by case number.
func (s *AnalysisService) ReaderEvaluations(ctx context.Context, id core.ReaderID) ([]study.Evaluation, error) {
	set, err := s.evaluations.GetByReader(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load evaluations")
	}
	out := make([]study.Evaluation, 0, len(set))
	for _, ev := range set {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseNumber < out[j].CaseNumber })
	return out, nil
}

func (s *AnalysisService) hasCase(caseNumber int) bool {
	for _, c := range s.cases {
		if c.CaseNumber == caseNumber {
			return true
		}
	}
	return false
}

// Recompute runs a full analysis pass at the given parameters.
// Readers are independent, so their summaries are computed
// concurrently; the underlying computation is pure and deterministic.
func (s *AnalysisService) Recompute(ctx context.Context, params analysis.Params) (*analysis.GroupSummary, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analysis parameters")
	}

	readers, evalsByReader, err := s.loadCohort(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summaries := make([]analysis.ReaderSummary, len(readers))
	g, _ := errgroup.WithContext(ctx)
	for i, reader := range readers {
		g.Go(func() error {
			summaries[i] = stats.AnalyzeReader(reader, s.cases, evalsByReader[reader.ID], params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg, avgAUC, counted := stats.AverageMetrics(summaries)
	s.logger.Info("analysis pass: %d readers (%d with data) in %s", len(readers), counted, time.Since(start))

	return &analysis.GroupSummary{
		Params:         params,
		Readers:        summaries,
		ReaderCount:    counted,
		AverageMetrics: avg,
		AverageAUC:     avgAUC,
	}, nil
}

// Timing runs the timing sub-analysis. The paired reader comparison
// uses the two readers with the most evaluated cases.
func (s *AnalysisService) Timing(ctx context.Context, params analysis.Params) (*analysis.TimingSummary, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analysis parameters")
	}

	readers, evalsByReader, err := s.loadCohort(ctx)
	if err != nil {
		return nil, err
	}

	summary := &analysis.TimingSummary{}
	for _, reader := range readers {
		evals := evalsByReader[reader.ID]
		times := stats.ReadingSeconds(evals)
		if len(times) == 0 {
			continue
		}

		timing := analysis.ReaderTiming{
			ReaderID:       reader.ID,
			EvaluatedCount: len(times),
		}
		total := 0.0
		for _, t := range times {
			total += t
		}
		timing.TotalTime = secondsToDuration(total)
		timing.MeanTimePerCase = secondsToDuration(total / float64(len(times)))
		if median, err := mstats.Median(times); err == nil {
			timing.MedianTime = secondsToDuration(median)
		}
		summary.Readers = append(summary.Readers, timing)
	}

	if res, ok := stats.LearningCurveTest(evalsByReader, params.PartialPercentage); ok {
		summary.LearningCurveTest = &res
	}
	if a, b, ok := s.busiestPair(summary.Readers); ok {
		if res, ok := stats.PairedReaderTimeTest(evalsByReader[a], evalsByReader[b]); ok {
			summary.PairedReaderTest = &res
		}
	}
	if res, ok := stats.ExperienceGroupTimeTest(readers, evalsByReader); ok {
		summary.ExperienceGroupTest = &res
	}
	return summary, nil
}

// busiestPair picks the two readers with the most evaluated cases.
func (s *AnalysisService) busiestPair(timings []analysis.ReaderTiming) (core.ReaderID, core.ReaderID, bool) {
	if len(timings) < 2 {
		return "", "", false
	}
	ranked := make([]analysis.ReaderTiming, len(timings))
	copy(ranked, timings)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EvaluatedCount != ranked[j].EvaluatedCount {
			return ranked[i].EvaluatedCount > ranked[j].EvaluatedCount
		}
		return ranked[i].ReaderID < ranked[j].ReaderID
	})
	return ranked[0].ReaderID, ranked[1].ReaderID, true
}

func (s *AnalysisService) loadCohort(ctx context.Context) ([]study.Reader, map[core.ReaderID]study.EvaluationSet, error) {
	readers, err := s.readers.List(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list readers")
	}
	evalsByReader, err := s.evaluations.GetAll(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load evaluations")
	}
	return readers, evalsByReader, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
