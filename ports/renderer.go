package ports

import (
	"context"

	"cmegrid/domain/cme"
)

// ChartRenderer draws the pivot table to image files
type ChartRenderer interface {
	RenderHeatmap(ctx context.Context, pivot *cme.PivotTable, path string) error
	RenderBars(ctx context.Context, pivot *cme.PivotTable, path string) error
}
