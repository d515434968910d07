package coercer

import (
	"math"
	"strconv"
	"strings"
)

// TypeCoercer turns raw spreadsheet cells into float64 measurements.
// Anything that does not parse as a number becomes NaN (missing).
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// NumericThreshold is the share of non-blank cells that must parse for a
	// column to be considered numeric; below it the column is flagged
	NumericThreshold float64 `json:"numeric_threshold"`
	// MissingTokens are read as missing without counting as invalid
	MissingTokens []string `json:"missing_tokens"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		MissingTokens:    []string{"nan", "na", "n/a", "null", "none", "-", "--", "----"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// CoerceFloat parses one cell. ok is false when the cell is blank, a
// missing token, unparseable, or NaN.
func (c *TypeCoercer) CoerceFloat(raw string) (value float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || c.isMissingToken(s) {
		return math.NaN(), false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// CoerceColumn parses a whole column
func (c *TypeCoercer) CoerceColumn(raw []string) ColumnCoercion {
	result := ColumnCoercion{
		Values: make([]float64, len(raw)),
	}

	for i, cell := range raw {
		v, ok := c.CoerceFloat(cell)
		result.Values[i] = v
		switch {
		case ok:
			result.NumericCount++
		case c.isBlank(cell):
			result.BlankCount++
		default:
			result.InvalidCount++
			if len(result.InvalidSamples) < maxInvalidSamples {
				result.InvalidSamples = append(result.InvalidSamples, strings.TrimSpace(cell))
			}
		}
	}

	if nonBlank := result.NumericCount + result.InvalidCount; nonBlank > 0 {
		result.NumericRatio = float64(result.NumericCount) / float64(nonBlank)
	}
	result.LooksNumeric = result.NumericCount > 0 && result.NumericRatio >= c.config.NumericThreshold

	return result
}

func (c *TypeCoercer) isBlank(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || c.isMissingToken(s)
}

func (c *TypeCoercer) isMissingToken(s string) bool {
	for _, token := range c.config.MissingTokens {
		if strings.EqualFold(s, token) {
			return true
		}
	}
	return false
}

const maxInvalidSamples = 5

// ColumnCoercion contains the coerced values and what was dropped
type ColumnCoercion struct {
	Values         []float64 `json:"-"`
	NumericCount   int       `json:"numeric_count"`
	BlankCount     int       `json:"blank_count"`
	InvalidCount   int       `json:"invalid_count"`
	InvalidSamples []string  `json:"invalid_samples,omitempty"`
	NumericRatio   float64   `json:"numeric_ratio"`
	LooksNumeric   bool      `json:"looks_numeric"`
}

// MissingCount is every value that ended up NaN
func (r ColumnCoercion) MissingCount() int {
	return r.BlankCount + r.InvalidCount
}
