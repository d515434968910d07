package ports

import (
	"context"

	"cmegrid/domain/cme"
)

// TableStore persists the flat and pivoted count tables
type TableStore interface {
	WriteResultTable(ctx context.Context, path string, table *cme.ResultTable) error
	WritePivotTable(ctx context.Context, path string, pivot *cme.PivotTable) error
	ReadPivotTable(ctx context.Context, path string) (*cme.PivotTable, error)
}
