package cme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *ResultTable {
	t.Helper()
	records := []Record{
		NewRecord(550, 50),
		NewRecord(550, 50),
		NewRecord(650, 70),
		NewRecord(850, 120),
		NewRecord(950, 95),
		NewRecord(1500, 360),
	}
	table, err := Classify(records, DefaultGrid())
	require.NoError(t, err)
	return table
}

func TestPivot_Shape(t *testing.T) {
	p, err := Pivot(sampleTable(t))
	require.NoError(t, err)

	rows, cols := p.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, DefaultSpeedRanges().Labels(), p.RowLabels)
	assert.Equal(t, DefaultWidthRanges().Labels(), p.ColumnLabels)

	n, ok := p.Count("500-599 km/s", "45-60°")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, _ = p.Count(">900 km/s", ">90°")
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, p.Max())
}

func TestPivot_FlattenPreservesTotal(t *testing.T) {
	table := sampleTable(t)
	p, err := Pivot(table)
	require.NoError(t, err)

	cells := p.Flatten()
	require.Len(t, cells, len(table.Buckets))

	sum := 0
	for i, c := range cells {
		assert.Equal(t, table.Buckets[i].Speed.Label, c.Row)
		assert.Equal(t, table.Buckets[i].Width.Label, c.Column)
		assert.Equal(t, table.Buckets[i].Count, c.Count)
		sum += c.Count
	}
	assert.Equal(t, table.Total(), sum)
	assert.Equal(t, table.Total(), p.Total())
}

func TestPivot_Totals(t *testing.T) {
	p, err := Pivot(sampleTable(t))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 0, 1, 2}, p.RowTotals())
	assert.Equal(t, []int{2, 1, 3}, p.ColumnTotals())
	assert.Equal(t, []int{0, 1, 0}, p.Row(1))
	assert.Equal(t, []int{2, 0, 0, 0, 0}, p.Column(0))
}

func TestPivot_MissingIntersectionIsZero(t *testing.T) {
	speed := DefaultSpeedRanges()
	width := DefaultWidthRanges()
	table := &ResultTable{Buckets: []Bucket{
		{Speed: speed[0], Width: width[0], Count: 3},
		{Speed: speed[1], Width: width[1], Count: 4},
	}}

	p, err := Pivot(table)
	require.NoError(t, err)

	n, ok := p.Count(speed[0].Label, width[1].Label)
	require.True(t, ok)
	assert.Zero(t, n)
	assert.Equal(t, 7, p.Total())
}

func TestPivot_Empty(t *testing.T) {
	_, err := Pivot(&ResultTable{})
	assert.ErrorIs(t, err, ErrMalformedPivot)
}

func TestNewPivotTable(t *testing.T) {
	p, err := NewPivotTable([]string{"a", "b"}, []string{"x", "y"}, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Total())
	assert.Equal(t, 3, p.At(1, 0))

	same, err := NewPivotTable([]string{"a", "b"}, []string{"x", "y"}, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.True(t, p.Equal(same))

	different, err := NewPivotTable([]string{"a", "b"}, []string{"x", "y"}, [][]int{{1, 2}, {3, 5}})
	require.NoError(t, err)
	assert.False(t, p.Equal(different))
	assert.False(t, p.Equal(nil))

	_, err = NewPivotTable([]string{"a"}, []string{"x", "y"}, [][]int{{1}})
	assert.ErrorIs(t, err, ErrMalformedPivot)
	_, err = NewPivotTable([]string{"a", "b"}, []string{"x"}, [][]int{{1}})
	assert.ErrorIs(t, err, ErrMalformedPivot)
	_, err = NewPivotTable(nil, []string{"x"}, nil)
	assert.ErrorIs(t, err, ErrMalformedPivot)
}
