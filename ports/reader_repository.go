package ports

import (
	"context"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
)

// ReaderRepository persists the reader cohort.
type ReaderRepository interface {
	Create(ctx context.Context, reader *study.Reader) error
	GetByID(ctx context.Context, id core.ReaderID) (*study.Reader, error)
	List(ctx context.Context) ([]study.Reader, error)
}
