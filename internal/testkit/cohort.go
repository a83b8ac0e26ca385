package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// CohortConfig controls the synthetic reading-study generator. All
// randomness flows from Seed, so a config is a reproducible fixture.
type CohortConfig struct {
	Cases        int
	Readers      int
	Seed         int64
	PositiveRate float64 // fraction of muscle-invasive cases
	Skill        float64 // 0..1, probability a reading lands on the correct side of cutoff 3
	BaseSeconds  float64 // mean reading time on the first case
	Speedup      float64 // fractional reduction in reading time from first to last case
}

// DefaultCohortConfig is a small classroom-sized study.
func DefaultCohortConfig() CohortConfig {
	return CohortConfig{
		Cases:        30,
		Readers:      6,
		Seed:         1,
		PositiveRate: 0.5,
		Skill:        0.85,
		BaseSeconds:  90,
		Speedup:      0.4,
	}
}

// Cohort is a fully materialized synthetic study.
type Cohort struct {
	Cases       []study.Case
	Readers     []study.Reader
	Evaluations map[core.ReaderID]study.EvaluationSet
}

var negativeStages = []study.Stage{study.StageTa, study.StageTis, study.StageT1}
var positiveStages = []study.Stage{study.StageT2, study.StageT3, study.StageT4}

// GenerateCohort builds a deterministic synthetic cohort: cases with
// known pathology, readers of configurable skill, and reading times
// that shorten over the case sequence to mimic a learning curve.
func GenerateCohort(cfg CohortConfig) (*Cohort, error) {
	if cfg.Cases <= 0 || cfg.Readers <= 0 {
		return nil, fmt.Errorf("cohort needs at least one case and one reader, got %d/%d", cfg.Cases, cfg.Readers)
	}
	if cfg.Skill < 0 || cfg.Skill > 1 {
		return nil, fmt.Errorf("skill must be in [0,1], got %g", cfg.Skill)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	cohort := &Cohort{Evaluations: make(map[core.ReaderID]study.EvaluationSet)}

	for i := 1; i <= cfg.Cases; i++ {
		var stage study.Stage
		if rng.Float64() < cfg.PositiveRate {
			stage = positiveStages[rng.Intn(len(positiveStages))]
		} else {
			stage = negativeStages[rng.Intn(len(negativeStages))]
		}
		cohort.Cases = append(cohort.Cases, study.Case{CaseNumber: i, Pathology: stage})
	}

	for i := 0; i < cfg.Readers; i++ {
		experience := study.ExperienceResident
		if i%2 == 1 {
			experience = study.ExperienceAttending
		}
		reader := study.Reader{
			ID:         core.ReaderID(fmt.Sprintf("reader-%02d", i+1)),
			Name:       fmt.Sprintf("Reader %02d", i+1),
			Experience: experience,
			CreatedAt:  core.Now(),
		}
		cohort.Readers = append(cohort.Readers, reader)
		cohort.Evaluations[reader.ID] = generateReadings(rng, reader, cohort.Cases, cfg)
	}

	return cohort, nil
}

func generateReadings(rng *rand.Rand, reader study.Reader, cases []study.Case, cfg CohortConfig) study.EvaluationSet {
	set := study.EvaluationSet{}
	for idx, c := range cases {
		score := sampleScore(rng, c.Positive(), cfg.Skill)

		// reading time shrinks linearly across the sequence, with jitter
		progress := float64(idx) / float64(len(cases))
		seconds := cfg.BaseSeconds * (1 - cfg.Speedup*progress)
		seconds *= 0.85 + 0.3*rng.Float64()

		set[c.CaseNumber] = study.Evaluation{
			ReaderID:    reader.ID,
			CaseNumber:  c.CaseNumber,
			T2W:         study.SubScore{Score: jitterScore(rng, score), Confidence: sampleConfidence(rng)},
			DWI:         study.SubScore{Score: jitterScore(rng, score), Confidence: sampleConfidence(rng)},
			DCE:         study.SubScore{Score: jitterScore(rng, score), Confidence: sampleConfidence(rng)},
			VIRADS:      study.SubScore{Score: score, Confidence: sampleConfidence(rng)},
			Quality:     study.ImageQuality(1 + rng.Intn(3)),
			ReadingTime: time.Duration(seconds * float64(time.Second)),
		}
	}
	return set
}

// sampleScore lands on the correct side of cutoff 3 with probability
// skill: positives in 3-5, negatives in 1-2.
func sampleScore(rng *rand.Rand, positive bool, skill float64) study.Score {
	correct := rng.Float64() < skill
	if positive == correct {
		return study.Score(3 + rng.Intn(3))
	}
	return study.Score(1 + rng.Intn(2))
}

func jitterScore(rng *rand.Rand, s study.Score) study.Score {
	v := s.Int() + rng.Intn(3) - 1
	if v < 1 {
		v = 1
	}
	if v > 5 {
		v = 5
	}
	return study.Score(v)
}

func sampleConfidence(rng *rand.Rand) study.Confidence {
	return study.Confidence(2 + rng.Intn(4))
}
