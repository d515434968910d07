package container

import (
	"context"
	"fmt"

	"cmegrid/adapters/chart"
	"cmegrid/adapters/excel"
	"cmegrid/adapters/sqlstore"
	"cmegrid/app"
	"cmegrid/internal"
	"cmegrid/internal/config"
	"cmegrid/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB // nil unless the archive is enabled

	// Adapters
	Source   ports.RecordSource
	Store    ports.TableStore
	Renderer ports.ChartRenderer
	Archive  ports.RunArchive

	Service *app.ClassificationService
}

// New creates a new dependency injection container. The archive database is
// opened and migrated when configured.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Source:   excel.NewRecordLoader(excel.DefaultExcelConfig(), logger),
		Store:    excel.NewTableWriter(logger),
		Renderer: chart.NewRenderer(logger),
	}

	if cfg.Archive.Enabled() {
		db, err := sqlstore.Open(ctx, cfg.Archive.Driver, cfg.Archive.DSN)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Archive = sqlstore.NewRunRepository(db)
		logger.Info("Run archive enabled (%s)", cfg.Archive.Driver)
	}

	c.Service = app.NewClassificationService(c.Source, c.Store, c.Renderer, c.Archive, logger)
	return c, nil
}

// RunRequest builds the pipeline request from the configuration
func (c *Container) RunRequest() app.RunRequest {
	return app.RunRequest{
		Input: ports.LoadRequest{
			Path:          c.Config.Input.File,
			Sheet:         c.Config.Input.Sheet,
			StrictColumns: c.Config.Input.StrictColumns,
		},
		Outputs:    OutputPaths(c.Config.Output),
		SkipCharts: c.Config.Output.SkipCharts,
	}
}

// OutputPaths resolves artifact paths inside the output directory
func OutputPaths(out config.OutputConfig) app.OutputPaths {
	return app.OutputPaths{
		Detailed: out.DetailedPath(),
		Pivot:    out.PivotPath(),
		Heatmap:  out.HeatmapPath(),
		Bars:     out.BarsPath(),
	}
}

// Shutdown releases the archive connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
