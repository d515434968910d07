package cme

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IndexName is the heading of the pivot's leading label column
const IndexName = "Rango Velocidad"

// PivotTable holds bucket counts with speed labels as rows and width
// labels as columns
type PivotTable struct {
	RowLabels    []string
	ColumnLabels []string
	counts       *mat.Dense
}

// Cell is one labelled pivot entry
type Cell struct {
	Row    string `json:"row"`
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// NewPivotTable builds a pivot from labels and a row-major count matrix
func NewPivotTable(rowLabels, columnLabels []string, counts [][]int) (*PivotTable, error) {
	if len(rowLabels) == 0 || len(columnLabels) == 0 {
		return nil, fmt.Errorf("%w: %d rows x %d columns", ErrMalformedPivot, len(rowLabels), len(columnLabels))
	}
	if len(counts) != len(rowLabels) {
		return nil, fmt.Errorf("%w: %d row labels but %d count rows", ErrMalformedPivot, len(rowLabels), len(counts))
	}

	data := make([]float64, 0, len(rowLabels)*len(columnLabels))
	for i, row := range counts {
		if len(row) != len(columnLabels) {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrMalformedPivot, rowLabels[i], len(row), len(columnLabels))
		}
		for _, v := range row {
			data = append(data, float64(v))
		}
	}

	return &PivotTable{
		RowLabels:    append([]string(nil), rowLabels...),
		ColumnLabels: append([]string(nil), columnLabels...),
		counts:       mat.NewDense(len(rowLabels), len(columnLabels), data),
	}, nil
}

// Pivot reshapes the flat table. Rows and columns keep first-seen order;
// intersections absent from the flat table are zero.
func Pivot(t *ResultTable) (*PivotTable, error) {
	var rows, cols []string
	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	for _, b := range t.Buckets {
		if _, ok := rowIdx[b.Speed.Label]; !ok {
			rowIdx[b.Speed.Label] = len(rows)
			rows = append(rows, b.Speed.Label)
		}
		if _, ok := colIdx[b.Width.Label]; !ok {
			colIdx[b.Width.Label] = len(cols)
			cols = append(cols, b.Width.Label)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no buckets to pivot", ErrMalformedPivot)
	}

	counts := mat.NewDense(len(rows), len(cols), nil)
	for _, b := range t.Buckets {
		i, j := rowIdx[b.Speed.Label], colIdx[b.Width.Label]
		counts.Set(i, j, counts.At(i, j)+float64(b.Count))
	}

	return &PivotTable{RowLabels: rows, ColumnLabels: cols, counts: counts}, nil
}

// Dims returns the number of rows and columns
func (p *PivotTable) Dims() (rows, cols int) {
	return p.counts.Dims()
}

// At returns the count at row i, column j
func (p *PivotTable) At(i, j int) int {
	return int(p.counts.At(i, j))
}

// Count looks a cell up by its labels
func (p *PivotTable) Count(rowLabel, columnLabel string) (int, bool) {
	i := indexOf(p.RowLabels, rowLabel)
	j := indexOf(p.ColumnLabels, columnLabel)
	if i < 0 || j < 0 {
		return 0, false
	}
	return p.At(i, j), true
}

// Row returns the counts of row i
func (p *PivotTable) Row(i int) []int {
	return toInts(mat.Row(nil, i, p.counts))
}

// Column returns the counts of column j
func (p *PivotTable) Column(j int) []int {
	return toInts(mat.Col(nil, j, p.counts))
}

// RowTotals sums each row
func (p *PivotTable) RowTotals() []int {
	r, _ := p.Dims()
	totals := make([]int, r)
	for i := 0; i < r; i++ {
		totals[i] = int(floats.Sum(mat.Row(nil, i, p.counts)))
	}
	return totals
}

// ColumnTotals sums each column
func (p *PivotTable) ColumnTotals() []int {
	_, c := p.Dims()
	totals := make([]int, c)
	for j := 0; j < c; j++ {
		totals[j] = int(floats.Sum(mat.Col(nil, j, p.counts)))
	}
	return totals
}

// Total sums every cell
func (p *PivotTable) Total() int {
	return int(mat.Sum(p.counts))
}

// Max returns the largest cell count
func (p *PivotTable) Max() int {
	return int(mat.Max(p.counts))
}

// Flatten lists the cells row by row
func (p *PivotTable) Flatten() []Cell {
	r, c := p.Dims()
	cells := make([]Cell, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			cells = append(cells, Cell{Row: p.RowLabels[i], Column: p.ColumnLabels[j], Count: p.At(i, j)})
		}
	}
	return cells
}

// Equal compares labels and counts
func (p *PivotTable) Equal(other *PivotTable) bool {
	if other == nil {
		return false
	}
	if !equalStrings(p.RowLabels, other.RowLabels) || !equalStrings(p.ColumnLabels, other.ColumnLabels) {
		return false
	}
	return mat.Equal(p.counts, other.counts)
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toInts(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
