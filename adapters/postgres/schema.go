package postgres

import (
	"github.com/jmoiron/sqlx"

	"viradsbench/internal/errors"
)

// InitSchema creates the study tables if they do not exist yet.
// Called once at startup; the repositories in this package assume
// these table shapes.
func InitSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS readers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		experience TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		reader_id       TEXT NOT NULL REFERENCES readers(id),
		case_number     INTEGER NOT NULL,
		t2w_score       SMALLINT NOT NULL,
		t2w_confidence  SMALLINT NOT NULL,
		dwi_score       SMALLINT NOT NULL,
		dwi_confidence  SMALLINT NOT NULL,
		dce_score       SMALLINT NOT NULL,
		dce_confidence  SMALLINT NOT NULL,
		virads_score    SMALLINT NOT NULL,
		virads_confidence SMALLINT NOT NULL,
		quality         SMALLINT NOT NULL,
		reading_seconds DOUBLE PRECISION NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (reader_id, case_number)
	);`

	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to initialize schema")
	}
	return nil
}
