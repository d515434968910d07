package app

import (
	"context"
	"time"

	"cmegrid/domain/cme"
	"cmegrid/domain/core"
	"cmegrid/domain/run"
	"cmegrid/internal"
	"cmegrid/internal/errors"
	"cmegrid/internal/profiling"
	"cmegrid/ports"
)

// ClassificationService runs the load, classify, pivot, persist and render
// pipeline over one input spreadsheet
type ClassificationService struct {
	source   ports.RecordSource
	store    ports.TableStore
	renderer ports.ChartRenderer
	archive  ports.RunArchive // optional
	profiler *profiling.DataProfiler
	logger   *internal.Logger
	now      func() time.Time
}

// OutputPaths names every artifact a run writes
type OutputPaths struct {
	Detailed string
	Pivot    string
	Heatmap  string
	Bars     string
}

// RunRequest defines the inputs of one classification run
type RunRequest struct {
	Input      ports.LoadRequest
	Grid       cme.Grid // zero value selects the default grid
	Outputs    OutputPaths
	SkipCharts bool
	RunID      core.RunID // optional, will be generated if empty
}

// RunResult contains the complete output of a run
type RunResult struct {
	RunID       core.RunID                `json:"run_id"`
	Dataset     *cme.Dataset              `json:"-"`
	Results     *cme.ResultTable          `json:"results"`
	Pivot       *cme.PivotTable           `json:"-"`
	Profiles    []profiling.ColumnProfile `json:"profiles"`
	Fingerprint core.Hash                 `json:"fingerprint"`
	Manifest    *run.Manifest             `json:"manifest"`
	Artifacts   []string                  `json:"artifacts"`
	Stages      []StageTiming             `json:"stages"`
	RuntimeMs   int64                     `json:"runtime_ms"`
}

// NewClassificationService wires the pipeline. archive may be nil.
func NewClassificationService(source ports.RecordSource, store ports.TableStore, renderer ports.ChartRenderer, archive ports.RunArchive, logger *internal.Logger) *ClassificationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ClassificationService{
		source:   source,
		store:    store,
		renderer: renderer,
		archive:  archive,
		profiler: profiling.NewDataProfiler(),
		logger:   logger.With("pipeline"),
		now:      time.Now,
	}
}

// Run executes every stage in order. The first failing stage aborts the run.
func (s *ClassificationService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	startTime := s.now()

	grid := req.Grid
	if len(grid.Speed) == 0 && len(grid.Width) == 0 {
		grid = cme.DefaultGrid()
	}
	if err := grid.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	runID := req.RunID
	if runID.IsEmpty() {
		runID = core.NewRunID()
	}
	result := &RunResult{RunID: runID}
	stages := NewStageRunner(s.logger)

	s.logger.Info("Run %s started for %s", runID, req.Input.Path)

	err := stages.Run(ctx, StageLoad, func(ctx context.Context) error {
		ds, err := s.source.Load(ctx, req.Input)
		if err != nil {
			return err
		}
		result.Dataset = ds
		result.Profiles = s.profiler.ProfileDataset(ds)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stages.Run(ctx, StageClassify, func(ctx context.Context) error {
		table, err := cme.Classify(result.Dataset.Records, grid)
		if err != nil {
			return err
		}
		result.Results = table
		result.Fingerprint = table.Fingerprint()
		if outside := result.Dataset.Complete() - table.Total(); outside > 0 {
			s.logger.Debug("%d complete records fall outside every range", outside)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stages.Run(ctx, StagePivot, func(ctx context.Context) error {
		pivot, err := cme.Pivot(result.Results)
		if err != nil {
			return err
		}
		result.Pivot = pivot
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stages.Run(ctx, StagePersist, func(ctx context.Context) error {
		if err := s.store.WriteResultTable(ctx, req.Outputs.Detailed, result.Results); err != nil {
			return err
		}
		result.Artifacts = append(result.Artifacts, req.Outputs.Detailed)
		if err := s.store.WritePivotTable(ctx, req.Outputs.Pivot, result.Pivot); err != nil {
			return err
		}
		result.Artifacts = append(result.Artifacts, req.Outputs.Pivot)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.SkipCharts {
		s.logger.Info("Chart rendering skipped")
	} else {
		err = stages.Run(ctx, StageRender, func(ctx context.Context) error {
			return s.renderCharts(ctx, result.Pivot, req.Outputs, &result.Artifacts)
		})
		if err != nil {
			return nil, err
		}
	}

	result.Manifest = run.NewManifest(runID, result.Dataset, result.Results, startTime)
	if s.archive != nil {
		err = stages.Run(ctx, StageArchive, func(ctx context.Context) error {
			return s.archive.SaveRun(ctx, result.Manifest)
		})
		if err != nil {
			return nil, err
		}
	}

	result.Stages = stages.Timings()
	result.RuntimeMs = s.now().Sub(startTime).Milliseconds()
	s.logger.Info("Run %s completed: %d of %d records classified, fingerprint %s",
		runID, result.Results.Total(), result.Dataset.Len(), result.Fingerprint.Short())
	return result, nil
}

// RenderFromFile reloads a persisted pivot table and draws the charts from it
func (s *ClassificationService) RenderFromFile(ctx context.Context, pivotPath string, outputs OutputPaths) (*cme.PivotTable, []string, error) {
	stages := NewStageRunner(s.logger)

	var pivot *cme.PivotTable
	err := stages.Run(ctx, StageLoad, func(ctx context.Context) error {
		p, err := s.store.ReadPivotTable(ctx, pivotPath)
		if err != nil {
			return err
		}
		pivot = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var artifacts []string
	err = stages.Run(ctx, StageRender, func(ctx context.Context) error {
		return s.renderCharts(ctx, pivot, outputs, &artifacts)
	})
	if err != nil {
		return nil, nil, err
	}
	return pivot, artifacts, nil
}

// Profile loads the input and summarises the measurement columns without
// writing anything
func (s *ClassificationService) Profile(ctx context.Context, input ports.LoadRequest) (*cme.Dataset, []profiling.ColumnProfile, error) {
	ds, err := s.source.Load(ctx, input)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s stage failed", StageLoad)
	}
	return ds, s.profiler.ProfileDataset(ds), nil
}

// History lists archived runs, newest first
func (s *ClassificationService) History(ctx context.Context, limit int) ([]run.Manifest, error) {
	if s.archive == nil {
		return nil, errors.ConfigInvalid("run archive is not configured")
	}
	return s.archive.ListRuns(ctx, limit)
}

func (s *ClassificationService) renderCharts(ctx context.Context, pivot *cme.PivotTable, outputs OutputPaths, artifacts *[]string) error {
	if err := s.renderer.RenderHeatmap(ctx, pivot, outputs.Heatmap); err != nil {
		return err
	}
	*artifacts = append(*artifacts, outputs.Heatmap)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.renderer.RenderBars(ctx, pivot, outputs.Bars); err != nil {
		return err
	}
	*artifacts = append(*artifacts, outputs.Bars)
	return nil
}
