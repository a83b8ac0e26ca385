package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/ports"
)

// ReaderRepositoryImpl implements ReaderRepository for PostgreSQL
type ReaderRepositoryImpl struct {
	db *sqlx.DB
}

// NewReaderRepository creates a new PostgreSQL reader repository
func NewReaderRepository(db *sqlx.DB) ports.ReaderRepository {
	return &ReaderRepositoryImpl{db: db}
}

type readerRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Experience string    `db:"experience"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row readerRow) toDomain() study.Reader {
	return study.Reader{
		ID:         core.ReaderID(row.ID),
		Name:       row.Name,
		Experience: study.ExperienceLevel(row.Experience),
		CreatedAt:  core.NewTimestamp(row.CreatedAt),
	}
}

// Create inserts a reader; an existing ID is left untouched.
func (r *ReaderRepositoryImpl) Create(ctx context.Context, reader *study.Reader) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO readers (id, name, experience, created_at)
		VALUES ($1, $2, $3, NOW())
	`, reader.ID.String(), reader.Name, string(reader.Experience))

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil
		}
		return err
	}
	return nil
}

// GetByID fetches a single reader.
func (r *ReaderRepositoryImpl) GetByID(ctx context.Context, id core.ReaderID) (*study.Reader, error) {
	var row readerRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, experience, created_at
		FROM readers
		WHERE id = $1
	`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("reader", id.String())
		}
		return nil, err
	}

	reader := row.toDomain()
	return &reader, nil
}

// List returns the full cohort ordered by creation time.
func (r *ReaderRepositoryImpl) List(ctx context.Context) ([]study.Reader, error) {
	var rows []readerRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, experience, created_at
		FROM readers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}

	readers := make([]study.Reader, 0, len(rows))
	for _, row := range rows {
		readers = append(readers, row.toDomain())
	}
	return readers, nil
}
