package excel

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cmegrid/domain/cme"
	"cmegrid/internal"
	apperrors "cmegrid/internal/errors"
	"cmegrid/ports"

	"github.com/xuri/excelize/v2"
)

// Column headers of the detailed table
const (
	HeaderSpeedRange = "Rango Velocidad"
	HeaderWidthRange = "Rango Anchura"
	HeaderCount      = "Cantidad CME"
)

const defaultSheet = "Sheet1"

// TableWriter persists count tables as single-sheet workbooks
type TableWriter struct {
	logger *internal.Logger
}

var _ ports.TableStore = (*TableWriter)(nil)

// NewTableWriter creates a workbook writer
func NewTableWriter(logger *internal.Logger) *TableWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TableWriter{logger: logger.With("tables")}
}

// WriteResultTable writes one row per bucket in classification order
func (w *TableWriter) WriteResultTable(ctx context.Context, path string, table *cme.ResultTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if table == nil {
		return apperrors.InvalidInput("result table is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{HeaderSpeedRange, HeaderWidthRange, HeaderCount}
	if err := w.writeHeader(f, headers); err != nil {
		return apperrors.IOError("failed to write detailed header", err)
	}

	for i, b := range table.Buckets {
		row := i + 2
		values := []interface{}{b.Speed.Label, b.Width.Label, b.Count}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(defaultSheet, cell, v); err != nil {
				return apperrors.IOError("failed to write detailed row", err)
			}
		}
	}

	if err := w.save(f, path); err != nil {
		return err
	}
	w.logger.Info("Detailed table written to %s (%d buckets, %d CMEs)", path, len(table.Buckets), table.Total())
	return nil
}

// WritePivotTable writes the speed x width matrix. A1 holds the index
// name, row 1 the width labels and column A the speed labels.
func (w *TableWriter) WritePivotTable(ctx context.Context, path string, pivot *cme.PivotTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pivot == nil {
		return apperrors.InvalidInput("pivot table is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := append([]string{cme.IndexName}, pivot.ColumnLabels...)
	if err := w.writeHeader(f, headers); err != nil {
		return apperrors.IOError("failed to write pivot header", err)
	}

	rows, cols := pivot.Dims()
	for i := 0; i < rows; i++ {
		label, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(defaultSheet, label, pivot.RowLabels[i]); err != nil {
			return apperrors.IOError("failed to write pivot row label", err)
		}
		for j := 0; j < cols; j++ {
			cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
			if err := f.SetCellValue(defaultSheet, cell, pivot.At(i, j)); err != nil {
				return apperrors.IOError("failed to write pivot cell", err)
			}
		}
	}

	if err := w.save(f, path); err != nil {
		return err
	}
	w.logger.Info("Pivot table written to %s (%dx%d)", path, rows, cols)
	return nil
}

// ReadPivotTable loads a workbook written by WritePivotTable. Empty count
// cells read as zero.
func (w *TableWriter) ReadPivotTable(ctx context.Context, path string) (*cme.PivotTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.IOError(fmt.Sprintf("failed to open pivot file %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("%w: %s has no sheets", cme.ErrMalformedPivot, path))
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.IOError("failed to read pivot sheet", err)
	}

	pivot, err := parsePivotRows(rows)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("%s: %w", path, err))
	}
	w.logger.Debug("Pivot table read from %s", path)
	return pivot, nil
}

func parsePivotRows(rows [][]string) (*cme.PivotTable, error) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", cme.ErrMalformedPivot)
	}

	columns := make([]string, 0, len(rows[0])-1)
	for _, h := range rows[0][1:] {
		columns = append(columns, strings.TrimSpace(h))
	}

	var labels []string
	var counts [][]int
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		labels = append(labels, strings.TrimSpace(row[0]))
		values := make([]int, len(columns))
		for j := range columns {
			if j+1 >= len(row) {
				break
			}
			raw := strings.TrimSpace(row[j+1])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || v < 0 || v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: row %d column %q has non-count value %q", cme.ErrMalformedPivot, i+2, columns[j], raw)
			}
			values[j] = int(v)
		}
		counts = append(counts, values)
	}

	return cme.NewPivotTable(labels, columns, counts)
}

func (w *TableWriter) writeHeader(f *excelize.File, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(defaultSheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(defaultSheet, cell, cell, style); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(defaultSheet, col, col, 18); err != nil {
			return err
		}
	}
	return nil
}

func (w *TableWriter) save(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.IOError(fmt.Sprintf("failed to create output directory %s", dir), err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.IOError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}
