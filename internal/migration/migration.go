package migration

import (
	"context"

	"cmegrid/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles the run archive schema. Statements are portable
// between sqlite3 and postgres and safe to repeat.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create cme_runs table")
	}

	if err := r.createBucketCountsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create cme_bucket_counts table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cme_runs (
			run_id VARCHAR(64) PRIMARY KEY,
			source TEXT NOT NULL,
			records_loaded INTEGER NOT NULL,
			records_classified INTEGER NOT NULL,
			missing_speed INTEGER NOT NULL,
			missing_width INTEGER NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createBucketCountsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cme_bucket_counts (
			run_id VARCHAR(64) NOT NULL REFERENCES cme_runs(run_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			speed_range VARCHAR(64) NOT NULL,
			width_range VARCHAR(64) NOT NULL,
			cme_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_cme_runs_created_at ON cme_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cme_runs_fingerprint ON cme_runs(fingerprint)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
