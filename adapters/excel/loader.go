package excel

import (
	"context"
	"math"
	"path/filepath"

	"cmegrid/adapters/datareadiness/coercer"
	"cmegrid/domain/cme"
	"cmegrid/internal"
	apperrors "cmegrid/internal/errors"
	"cmegrid/ports"
)

// RecordLoader reads CME records from a spreadsheet and coerces the
// speed and width columns to numbers
type RecordLoader struct {
	config  ExcelConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

var _ ports.RecordSource = (*RecordLoader)(nil)

// NewRecordLoader creates a loader with the given column names and coercion rules
func NewRecordLoader(config ExcelConfig, logger *internal.Logger) *RecordLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RecordLoader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger.With("loader"),
	}
}

// Load reads the input and returns the coerced dataset
func (l *RecordLoader) Load(ctx context.Context, req ports.LoadRequest) (*cme.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(req.Path, req.Sheet, l.logger).ReadData()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var absent []string
	speeds, err := l.coerce(data, l.config.SpeedColumn, req.StrictColumns, &absent)
	if err != nil {
		return nil, err
	}
	widths, err := l.coerce(data, l.config.WidthColumn, req.StrictColumns, &absent)
	if err != nil {
		return nil, err
	}

	// An absent column still has one missing value per row
	if speeds == nil {
		speeds = nanColumn(len(data.Rows))
	}
	if widths == nil {
		widths = nanColumn(len(data.Rows))
	}

	ds := cme.NewDataset(filepath.Base(req.Path), speeds, widths)
	ds.AbsentColumns = absent

	l.logger.Info("Loaded %d records from %s (%d missing speed, %d missing width, %d complete)",
		ds.Len(), ds.Source, ds.MissingSpeed, ds.MissingWidth, ds.Complete())
	return ds, nil
}

// coerce returns nil values when the column is absent and absence is tolerated
func (l *RecordLoader) coerce(data *ExcelData, column string, strict bool, absent *[]string) ([]float64, error) {
	raw, ok := data.Column(column)
	if !ok {
		if strict {
			return nil, apperrors.WithCode(apperrors.CodeMissingColumn, cme.NewMissingColumnError(column))
		}
		l.logger.Warn("Column %q not found (headers: %v); treating every value as missing", column, data.Headers)
		*absent = append(*absent, column)
		return nil, nil
	}

	result := l.coercer.CoerceColumn(raw)
	if result.InvalidCount > 0 {
		l.logger.Debug("Column %q: %d non-numeric values coerced to missing (e.g. %v)",
			column, result.InvalidCount, result.InvalidSamples)
	}
	if !result.LooksNumeric && len(raw) > 0 {
		l.logger.Warn("Column %q does not look numeric (%.0f%% parsed)", column, result.NumericRatio*100)
	}
	l.logger.Debug("Column %q: %d numeric, %d blank, %d invalid",
		column, result.NumericCount, result.BlankCount, result.InvalidCount)
	return result.Values, nil
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
