package ports

import (
	"context"

	"cmegrid/domain/core"
	"cmegrid/domain/run"
)

// RunArchive keeps a history of classification runs
type RunArchive interface {
	SaveRun(ctx context.Context, manifest *run.Manifest) error
	GetRun(ctx context.Context, runID core.RunID) (*run.Manifest, error)
	ListRuns(ctx context.Context, limit int) ([]run.Manifest, error)
}
