package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"cmegrid/domain/cme"
	"cmegrid/domain/core"
	"cmegrid/domain/run"
	"cmegrid/internal/errors"
	"cmegrid/internal/migration"
	"cmegrid/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the archive database and applies the schema
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s archive", driver), err)
	}
	if driver == "sqlite3" {
		// an in-memory database only exists on its own connection
		db.SetMaxOpenConns(1)
	}

	if err := NewRunRepository(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunRepository implements ports.RunArchive on sqlite3 or postgres
type RunRepository struct {
	db *sqlx.DB
}

var _ ports.RunArchive = (*RunRepository)(nil)

// NewRunRepository creates a run archive over an open database
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Migrate creates the archive tables if they are absent
func (r *RunRepository) Migrate(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, r.db)
}

type bucketRow struct {
	Position   int    `db:"position"`
	SpeedRange string `db:"speed_range"`
	WidthRange string `db:"width_range"`
	Count      int    `db:"cme_count"`
}

// SaveRun stores the manifest and its bucket counts in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, manifest *run.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO cme_runs (run_id, source, records_loaded, records_classified, missing_speed, missing_width, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), manifest.RunID.String(), manifest.Source, manifest.RecordsLoaded, manifest.RecordsClassified,
		manifest.MissingSpeed, manifest.MissingWidth, manifest.Fingerprint.String(), manifest.CreatedAt)
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to insert run %s", manifest.RunID), err)
	}

	insertCount := tx.Rebind(`
		INSERT INTO cme_bucket_counts (run_id, position, speed_range, width_range, cme_count)
		VALUES (?, ?, ?, ?, ?)
	`)
	for i, c := range manifest.Counts {
		if _, err := tx.ExecContext(ctx, insertCount, manifest.RunID.String(), i, c.Row, c.Column, c.Count); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert bucket %s/%s", c.Row, c.Column), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// GetRun loads one run with its counts
func (r *RunRepository) GetRun(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	var manifest run.Manifest
	err := r.db.GetContext(ctx, &manifest, r.db.Rebind(`
		SELECT run_id, source, records_loaded, records_classified, missing_speed, missing_width, fingerprint, created_at
		FROM cme_runs
		WHERE run_id = ?
	`), runID.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound(fmt.Sprintf("run %s", runID))
	}
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to load run %s", runID), err)
	}

	if err := r.loadCounts(ctx, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ListRuns returns the most recent runs first, optionally limited
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]run.Manifest, error) {
	query := `
		SELECT run_id, source, records_loaded, records_classified, missing_speed, missing_width, fingerprint, created_at
		FROM cme_runs
		ORDER BY created_at DESC, run_id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var manifests []run.Manifest
	if err := r.db.SelectContext(ctx, &manifests, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	for i := range manifests {
		if err := r.loadCounts(ctx, &manifests[i]); err != nil {
			return nil, err
		}
	}
	return manifests, nil
}

func (r *RunRepository) loadCounts(ctx context.Context, manifest *run.Manifest) error {
	var rows []bucketRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT position, speed_range, width_range, cme_count
		FROM cme_bucket_counts
		WHERE run_id = ?
		ORDER BY position
	`), manifest.RunID.String())
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to load counts of run %s", manifest.RunID), err)
	}

	manifest.Counts = make([]cme.Cell, len(rows))
	for i, row := range rows {
		manifest.Counts[i] = cme.Cell{Row: row.SpeedRange, Column: row.WidthRange, Count: row.Count}
	}
	manifest.CreatedAt = manifest.CreatedAt.UTC()
	return nil
}
