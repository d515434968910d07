package excel

import (
	"cmegrid/adapters/datareadiness/coercer"
	"cmegrid/domain/cme"
)

// ExcelConfig holds configuration for the spreadsheet record source
type ExcelConfig struct {
	SpeedColumn    string                 `json:"speed_column"`
	WidthColumn    string                 `json:"width_column"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		SpeedColumn:    cme.ColumnLinearSpeed,
		WidthColumn:    cme.ColumnAngularWidth,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
