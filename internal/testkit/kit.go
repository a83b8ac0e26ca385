// Package testkit provides in-memory adapters and synthetic cohorts
// for tests and for running the app without Postgres or a workbook.
package testkit

import (
	"context"
	"sync"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/ports"
)

// InMemoryReaderRepository is a map-backed ReaderRepository.
type InMemoryReaderRepository struct {
	mu      sync.RWMutex
	readers map[core.ReaderID]study.Reader
	order   []core.ReaderID
}

// NewInMemoryReaderRepository creates an empty reader repository.
func NewInMemoryReaderRepository() *InMemoryReaderRepository {
	return &InMemoryReaderRepository{readers: make(map[core.ReaderID]study.Reader)}
}

var _ ports.ReaderRepository = (*InMemoryReaderRepository)(nil)

func (r *InMemoryReaderRepository) Create(ctx context.Context, reader *study.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.readers[reader.ID]; !exists {
		r.order = append(r.order, reader.ID)
	}
	r.readers[reader.ID] = *reader
	return nil
}

func (r *InMemoryReaderRepository) GetByID(ctx context.Context, id core.ReaderID) (*study.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reader, ok := r.readers[id]
	if !ok {
		return nil, core.NewNotFoundError("reader", id.String())
	}
	return &reader, nil
}

func (r *InMemoryReaderRepository) List(ctx context.Context) ([]study.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]study.Reader, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.readers[id])
	}
	return out, nil
}

// InMemoryEvaluationRepository is a map-backed EvaluationRepository.
type InMemoryEvaluationRepository struct {
	mu    sync.RWMutex
	store map[core.ReaderID]study.EvaluationSet
}

// NewInMemoryEvaluationRepository creates an empty evaluation repository.
func NewInMemoryEvaluationRepository() *InMemoryEvaluationRepository {
	return &InMemoryEvaluationRepository{store: make(map[core.ReaderID]study.EvaluationSet)}
}

var _ ports.EvaluationRepository = (*InMemoryEvaluationRepository)(nil)

func (r *InMemoryEvaluationRepository) Upsert(ctx context.Context, ev *study.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.store[ev.ReaderID]
	if !ok {
		set = study.EvaluationSet{}
		r.store[ev.ReaderID] = set
	}
	set[ev.CaseNumber] = *ev
	return nil
}

func (r *InMemoryEvaluationRepository) GetByReader(ctx context.Context, id core.ReaderID) (study.EvaluationSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := study.EvaluationSet{}
	for n, ev := range r.store[id] {
		out[n] = ev
	}
	return out, nil
}

func (r *InMemoryEvaluationRepository) GetAll(ctx context.Context) (map[core.ReaderID]study.EvaluationSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.ReaderID]study.EvaluationSet, len(r.store))
	for id, set := range r.store {
		copied := study.EvaluationSet{}
		for n, ev := range set {
			copied[n] = ev
		}
		out[id] = copied
	}
	return out, nil
}
