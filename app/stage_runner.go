package app

import (
	"context"
	"time"

	"cmegrid/internal"
	"cmegrid/internal/errors"
)

// StageName identifies one step of a classification run
type StageName string

// Pipeline stages in execution order
const (
	StageLoad     StageName = "load"
	StageClassify StageName = "classify"
	StagePivot    StageName = "pivot"
	StagePersist  StageName = "persist"
	StageRender   StageName = "render"
	StageArchive  StageName = "archive"
)

// StageTiming records how long a stage took
type StageTiming struct {
	Stage     StageName `json:"stage"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// StageRunner handles execution of pipeline stages
type StageRunner struct {
	logger  *internal.Logger
	timings []StageTiming
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *internal.Logger) *StageRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StageRunner{logger: logger}
}

// Run executes one stage. A canceled context stops the pipeline before the
// stage starts; a stage error is wrapped with the stage name.
func (r *StageRunner) Run(ctx context.Context, stage StageName, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "%s stage not started", stage)
	}

	start := time.Now()
	r.logger.Debug("Stage %s started", stage)
	if err := fn(ctx); err != nil {
		r.logger.Error("Stage %s failed: %v", stage, err)
		return errors.Wrapf(err, "%s stage failed", stage)
	}

	elapsed := time.Since(start).Milliseconds()
	r.timings = append(r.timings, StageTiming{Stage: stage, ElapsedMs: elapsed})
	r.logger.Info("Stage %s completed in %dms", stage, elapsed)
	return nil
}

// Timings returns the completed stages in order
func (r *StageRunner) Timings() []StageTiming {
	return append([]StageTiming(nil), r.timings...)
}
