package cme

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestRangeContains(t *testing.T) {
	bounded := NewRange(500, 599, "500-599 km/s")
	open := NewOpenRange(901, ">900 km/s")

	tests := []struct {
		name  string
		r     Range
		value float64
		want  bool
	}{
		{"lower bound inclusive", bounded, 500, true},
		{"upper bound inclusive", bounded, 599, true},
		{"below lower bound", bounded, 499.9, false},
		{"above upper bound", bounded, 599.5, false},
		{"nan never contained", bounded, nan, false},
		{"open range lower bound", open, 901, true},
		{"open range far above", open, 3500, true},
		{"open range +inf", open, math.Inf(1), true},
		{"open range below", open, 900, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.value))
		})
	}
}

func TestRangeSetValidate(t *testing.T) {
	assert.NoError(t, DefaultSpeedRanges().Validate())
	assert.NoError(t, DefaultWidthRanges().Validate())
	assert.ErrorIs(t, RangeSet{}.Validate(), ErrEmptyRanges)
	assert.ErrorIs(t, RangeSet{NewRange(10, 5, "inverted")}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, RangeSet{NewRange(1, 2, "a"), NewRange(3, 4, "a")}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, RangeSet{NewRange(1, 2, "")}.Validate(), ErrInvalidRange)
}

func TestClassify_SingleRecordScenarios(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		wantSpeed string
		wantWidth string
	}{
		{"slow narrow", NewRecord(550, 50), "500-599 km/s", "45-60°"},
		{"fast wide", NewRecord(950, 95), ">900 km/s", ">90°"},
		{"speed upper boundary", NewRecord(599, 61), "500-599 km/s", "61-90°"},
		{"speed 900 closes fourth range", NewRecord(900, 90), "800-900 km/s", "61-90°"},
		{"open speed lower bound", NewRecord(901, 91), ">900 km/s", ">90°"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Classify([]Record{tt.record}, DefaultGrid())
			require.NoError(t, err)
			require.Len(t, table.Buckets, 15)

			for _, b := range table.Buckets {
				if b.Speed.Label == tt.wantSpeed && b.Width.Label == tt.wantWidth {
					assert.Equal(t, 1, b.Count, "bucket %s/%s", b.Speed.Label, b.Width.Label)
				} else {
					assert.Zero(t, b.Count, "bucket %s/%s", b.Speed.Label, b.Width.Label)
				}
			}
		})
	}
}

func TestClassify_MissingValuesExcluded(t *testing.T) {
	records := []Record{
		NewRecord(nan, 50),
		NewRecord(nan, 95),
		NewRecord(nan, nan),
		NewRecord(700, nan),
	}

	table, err := Classify(records, DefaultGrid())
	require.NoError(t, err)
	assert.Zero(t, table.Total())
}

func TestClassify_OutOfDomainExcluded(t *testing.T) {
	records := []Record{
		NewRecord(499, 50),   // too slow
		NewRecord(700, 44),   // too narrow
		NewRecord(599.5, 50), // between integer bounds
		NewRecord(-1, -1),
	}

	table, err := Classify(records, DefaultGrid())
	require.NoError(t, err)
	assert.Zero(t, table.Total())
}

func TestClassify_ExactlyOneBucketPerInDomainRecord(t *testing.T) {
	grid := DefaultGrid()

	var records []Record
	inDomain := 0
	for speed := 400.0; speed <= 1300; speed += 7 {
		for width := 30.0; width <= 360; width += 5 {
			r := NewRecord(speed, width)
			records = append(records, r)
			if grid.InDomain(r) {
				inDomain++
			}
		}
	}
	records = append(records, NewRecord(nan, 100), NewRecord(800, nan))

	table, err := Classify(records, grid)
	require.NoError(t, err)
	assert.Equal(t, inDomain, table.Total())

	for _, r := range records {
		matches := 0
		for _, b := range table.Buckets {
			if b.Matches(r) {
				matches++
			}
		}
		if grid.InDomain(r) {
			assert.Equal(t, 1, matches, "record %+v", r)
		} else {
			assert.Zero(t, matches, "record %+v", r)
		}
	}
}

func TestClassify_Order(t *testing.T) {
	table, err := Classify(nil, DefaultGrid())
	require.NoError(t, err)

	require.Len(t, table.Buckets, 15)
	assert.Equal(t, "500-599 km/s", table.Buckets[0].Speed.Label)
	assert.Equal(t, "45-60°", table.Buckets[0].Width.Label)
	assert.Equal(t, "500-599 km/s", table.Buckets[2].Speed.Label)
	assert.Equal(t, ">90°", table.Buckets[2].Width.Label)
	assert.Equal(t, ">900 km/s", table.Buckets[14].Speed.Label)
	assert.Equal(t, ">90°", table.Buckets[14].Width.Label)
}

func TestClassify_CustomGrid(t *testing.T) {
	grid := Grid{
		Speed: RangeSet{NewRange(0, 10, "slow"), NewOpenRange(11, "fast")},
		Width: RangeSet{NewOpenRange(0, "any")},
	}

	table, err := Classify([]Record{NewRecord(5, 1), NewRecord(20, 1), NewRecord(30, 2)}, grid)
	require.NoError(t, err)

	slow, ok := table.Count("slow", "any")
	require.True(t, ok)
	fast, _ := table.Count("fast", "any")
	assert.Equal(t, 1, slow)
	assert.Equal(t, 2, fast)

	_, ok = table.Count("slow", "missing")
	assert.False(t, ok)
}

func TestClassify_InvalidGrid(t *testing.T) {
	_, err := Classify(nil, Grid{Speed: DefaultSpeedRanges()})
	assert.ErrorIs(t, err, ErrEmptyRanges)
}

func TestFingerprint_Deterministic(t *testing.T) {
	records := []Record{NewRecord(550, 50), NewRecord(950, 95), NewRecord(nan, 70)}

	first, err := Classify(records, DefaultGrid())
	require.NoError(t, err)
	second, err := Classify(records, DefaultGrid())
	require.NoError(t, err)

	assert.Equal(t, first.Buckets, second.Buckets)
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	other, err := Classify(records[:1], DefaultGrid())
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint(), other.Fingerprint())
}

func TestNewDataset_MissingTallies(t *testing.T) {
	ds := NewDataset("test.xlsx", []float64{500, nan, 700}, []float64{50, 60})

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, 1, ds.MissingSpeed)
	assert.Equal(t, 1, ds.MissingWidth)
	assert.Equal(t, 1, ds.Complete())
	assert.True(t, math.IsNaN(ds.Records[2].AngularWidth))

	absent := NewDataset("test.xlsx", []float64{500, 600}, nil)
	assert.Equal(t, 2, absent.MissingWidth)
	assert.Zero(t, absent.Complete())
}
