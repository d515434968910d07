package excel

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Sheet   string       // Sheet the rows were read from, empty for CSV
	Headers []string     // Column headers, whitespace-trimmed
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a trimmed header is present
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the raw cells of one column in row order.
// Cells missing from short rows come back empty.
func (d *ExcelData) Column(name string) ([]string, bool) {
	if !d.HasColumn(name) {
		return nil, false
	}
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[name]
	}
	return values, true
}
