package cme

import "math"

// Dataset is the coerced view of an input spreadsheet
type Dataset struct {
	Source        string   `json:"source"`
	Records       []Record `json:"records"`
	MissingSpeed  int      `json:"missing_speed"`
	MissingWidth  int      `json:"missing_width"`
	AbsentColumns []string `json:"absent_columns,omitempty"`
}

// NewDataset builds a dataset from parallel speed and width columns.
// A nil column stands for an absent one and is read as all-missing.
func NewDataset(source string, speeds, widths []float64) *Dataset {
	n := len(speeds)
	if len(widths) > n {
		n = len(widths)
	}

	ds := &Dataset{Source: source, Records: make([]Record, n)}
	for i := 0; i < n; i++ {
		speed, width := valueAt(speeds, i), valueAt(widths, i)
		if math.IsNaN(speed) {
			ds.MissingSpeed++
		}
		if math.IsNaN(width) {
			ds.MissingWidth++
		}
		ds.Records[i] = NewRecord(speed, width)
	}
	return ds
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Speeds returns the speed column
func (d *Dataset) Speeds() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.LinearSpeed
	}
	return out
}

// Widths returns the width column
func (d *Dataset) Widths() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.AngularWidth
	}
	return out
}

// Complete counts records with both measurements present
func (d *Dataset) Complete() int {
	n := 0
	for _, r := range d.Records {
		if r.Complete() {
			n++
		}
	}
	return n
}

func valueAt(col []float64, i int) float64 {
	if i >= len(col) {
		return math.NaN()
	}
	return col[i]
}
