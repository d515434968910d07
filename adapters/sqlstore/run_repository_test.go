package sqlstore

import (
	"context"
	"testing"
	"time"

	"cmegrid/domain/cme"
	"cmegrid/domain/core"
	"cmegrid/domain/run"
	"cmegrid/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *RunRepository {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunRepository(db)
}

func newTestManifest(t *testing.T, createdAt time.Time, records ...cme.Record) *run.Manifest {
	t.Helper()
	ds := &cme.Dataset{Source: "Datos_soho-lasco.xlsx", Records: records}
	table, err := cme.Classify(records, cme.DefaultGrid())
	require.NoError(t, err)
	return run.NewManifest(core.NewRunID(), ds, table, createdAt)
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	manifest := newTestManifest(t, createdAt, cme.NewRecord(550, 50), cme.NewRecord(950, 95), cme.NewRecord(100, 10))
	require.NoError(t, repo.SaveRun(ctx, manifest))

	loaded, err := repo.GetRun(ctx, manifest.RunID)
	require.NoError(t, err)

	assert.Equal(t, manifest.RunID, loaded.RunID)
	assert.Equal(t, manifest.Source, loaded.Source)
	assert.Equal(t, 3, loaded.RecordsLoaded)
	assert.Equal(t, 2, loaded.RecordsClassified)
	assert.Equal(t, manifest.Fingerprint, loaded.Fingerprint)
	assert.True(t, createdAt.Equal(loaded.CreatedAt))
	assert.Equal(t, manifest.Counts, loaded.Counts)
	assert.True(t, manifest.SameCounts(loaded))
	assert.NoError(t, loaded.Validate())
}

func TestRunRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetRun(context.Background(), core.NewRunID())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRunRepository_DuplicateRunRejected(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	manifest := newTestManifest(t, time.Now(), cme.NewRecord(650, 70))
	require.NoError(t, repo.SaveRun(ctx, manifest))

	err := repo.SaveRun(ctx, manifest)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDatabaseError))
}

func TestRunRepository_InvalidManifest(t *testing.T) {
	repo := newTestRepository(t)

	manifest := newTestManifest(t, time.Now(), cme.NewRecord(650, 70))
	manifest.RecordsClassified = 5

	err := repo.SaveRun(context.Background(), manifest)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	runs, err := repo.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunRepository_ListRuns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []core.RunID
	for i := 0; i < 3; i++ {
		m := newTestManifest(t, base.Add(time.Duration(i)*time.Hour), cme.NewRecord(550, 50))
		require.NoError(t, repo.SaveRun(ctx, m))
		ids = append(ids, m.RunID)
	}

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].RunID, "newest first")
	assert.Equal(t, ids[0], runs[2].RunID)
	assert.Len(t, runs[0].Counts, 15)

	limited, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRunRepository_MigrateIsRepeatable(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveRun(ctx, newTestManifest(t, time.Now(), cme.NewRecord(750, 61))))
	require.NoError(t, repo.Migrate(ctx))

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
