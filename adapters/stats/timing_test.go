package stats

import (
	"math"
	"testing"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

func timedSet(times map[int]float64) study.EvaluationSet {
	set := study.EvaluationSet{}
	for n, secs := range times {
		set[n] = makeEvaluation(n, 3, secs)
	}
	return set
}

func TestReadingSeconds(t *testing.T) {
	set := timedSet(map[int]float64{3: 20, 1: 40, 2: 30})
	got := ReadingSeconds(set)
	want := []float64{40, 30, 20} // ascending case order
	if len(got) != len(want) {
		t.Fatalf("got %d times, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("times[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLearningCurveTestDetectsSpeedup(t *testing.T) {
	// Every reader slows down markedly in the early half, so the paired
	// test across readers should find a significant early-vs-late gap.
	evalsByReader := map[core.ReaderID]study.EvaluationSet{
		"r1": timedSet(map[int]float64{1: 60, 2: 58, 3: 30, 4: 29}),
		"r2": timedSet(map[int]float64{1: 70, 2: 66, 3: 35, 4: 33}),
		"r3": timedSet(map[int]float64{1: 55, 2: 52, 3: 28, 4: 26}),
		"r4": timedSet(map[int]float64{1: 65, 2: 61, 3: 31, 4: 30}),
	}

	res, ok := LearningCurveTest(evalsByReader, 50)
	if !ok {
		t.Fatal("expected a computable result")
	}
	if res.Statistic <= 0 {
		t.Errorf("early readings are slower, expected positive statistic, got %v", res.Statistic)
	}
	if res.PValue > 0.05 {
		t.Errorf("consistent speedup should be significant, p = %v", res.PValue)
	}
}

func TestLearningCurveTestTooFewReaders(t *testing.T) {
	evalsByReader := map[core.ReaderID]study.EvaluationSet{
		"r1": timedSet(map[int]float64{1: 60, 2: 30}),
	}
	if _, ok := LearningCurveTest(evalsByReader, 50); ok {
		t.Error("expected no result with a single reader")
	}
}

func TestPairedReaderTimeTest(t *testing.T) {
	a := timedSet(map[int]float64{1: 50, 2: 45, 3: 40, 4: 38})
	b := timedSet(map[int]float64{1: 30, 2: 28, 3: 26, 4: 25})

	res, ok := PairedReaderTimeTest(a, b)
	if !ok {
		t.Fatal("expected a computable result")
	}
	if res.Statistic <= 0 {
		t.Errorf("first reader is slower on every case, expected positive statistic, got %v", res.Statistic)
	}
	if res.DegreesOfFreedom != 3 {
		t.Errorf("df = %v, want 3", res.DegreesOfFreedom)
	}
}

func TestPairedReaderTimeTestDisjointCases(t *testing.T) {
	a := timedSet(map[int]float64{1: 50, 2: 45})
	b := timedSet(map[int]float64{3: 30, 4: 28})
	if _, ok := PairedReaderTimeTest(a, b); ok {
		t.Error("expected no result without common cases")
	}
}

func TestExperienceGroupTimeTest(t *testing.T) {
	readers := []study.Reader{
		{ID: "res1", Experience: study.ExperienceResident},
		{ID: "res2", Experience: study.ExperienceResident},
		{ID: "res3", Experience: study.ExperienceResident},
		{ID: "att1", Experience: study.ExperienceAttending},
		{ID: "att2", Experience: study.ExperienceAttending},
		{ID: "att3", Experience: study.ExperienceAttending},
	}
	evalsByReader := map[core.ReaderID]study.EvaluationSet{
		"res1": timedSet(map[int]float64{1: 80, 2: 78}),
		"res2": timedSet(map[int]float64{1: 84, 2: 82}),
		"res3": timedSet(map[int]float64{1: 79, 2: 81}),
		"att1": timedSet(map[int]float64{1: 40, 2: 38}),
		"att2": timedSet(map[int]float64{1: 42, 2: 41}),
		"att3": timedSet(map[int]float64{1: 39, 2: 40}),
	}

	res, ok := ExperienceGroupTimeTest(readers, evalsByReader)
	if !ok {
		t.Fatal("expected a computable result")
	}
	if res.Statistic <= 0 {
		t.Errorf("residents are slower, expected positive statistic, got %v", res.Statistic)
	}
	if res.PValue > 0.01 {
		t.Errorf("clear group separation should be significant, p = %v", res.PValue)
	}
	if math.IsNaN(res.PValue) {
		t.Error("p-value must never be NaN")
	}
}

func TestExperienceGroupTimeTestOneGroup(t *testing.T) {
	readers := []study.Reader{
		{ID: "res1", Experience: study.ExperienceResident},
		{ID: "res2", Experience: study.ExperienceResident},
	}
	evalsByReader := map[core.ReaderID]study.EvaluationSet{
		"res1": timedSet(map[int]float64{1: 80}),
		"res2": timedSet(map[int]float64{1: 84}),
	}
	if _, ok := ExperienceGroupTimeTest(readers, evalsByReader); ok {
		t.Error("expected no result with a single group")
	}
}
