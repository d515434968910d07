package profiling

import (
	"math"
	"testing"

	"cmegrid/domain/cme"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDistribution_IgnoresNaN(t *testing.T) {
	values := []float64{500, math.NaN(), 600, 700, 800, math.NaN(), 900}

	profile, err := NewDistributionAnalyzer().AnalyzeDistribution("speed", values)
	require.NoError(t, err)

	assert.Equal(t, "speed", profile.Name)
	assert.Equal(t, 5, profile.Count)
	assert.Equal(t, 2, profile.Missing)
	assert.Equal(t, 500.0, profile.Min)
	assert.Equal(t, 900.0, profile.Max)
	assert.Equal(t, 700.0, profile.Mean)
	assert.Equal(t, 700.0, profile.Median)
	assert.InDelta(t, 158.1139, profile.StdDev, 1e-4)
	assert.Equal(t, 600.0, profile.Q1)
	assert.Equal(t, 800.0, profile.Q3)
	assert.Equal(t, 200.0, profile.IQR())
	assert.InDelta(t, 0, profile.Skewness, 1e-9)
	assert.Zero(t, profile.Outliers)
}

func TestAnalyzeDistribution_Outliers(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 15, 16, 500}

	profile, err := NewDistributionAnalyzer().AnalyzeDistribution("width", values)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Outliers)
	assert.Greater(t, profile.Skewness, 0.0)
}

func TestAnalyzeDistribution_Empty(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		wantMissing int
	}{
		{"nil", nil, 0},
		{"all missing", []float64{math.NaN(), math.NaN()}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := NewDistributionAnalyzer().AnalyzeDistribution("x", tt.values)
			require.NoError(t, err)
			assert.True(t, profile.Empty())
			assert.Equal(t, tt.wantMissing, profile.Missing)
			assert.Zero(t, profile.Mean)
		})
	}
}

func TestAnalyzeDistribution_SingleValue(t *testing.T) {
	profile, err := NewDistributionAnalyzer().AnalyzeDistribution("x", []float64{42})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Count)
	assert.Zero(t, profile.StdDev)
	assert.Equal(t, 42.0, profile.Q1)
	assert.Equal(t, 42.0, profile.Q3)
}

func TestProfileDataset(t *testing.T) {
	ds := cme.NewDataset("in.xlsx", []float64{500, 600, math.NaN()}, []float64{50, math.NaN(), math.NaN()})

	profiles := NewDataProfiler().ProfileDataset(ds)
	require.Len(t, profiles, 2)
	assert.Equal(t, cme.ColumnLinearSpeed, profiles[0].Name)
	assert.Equal(t, 2, profiles[0].Count)
	assert.Equal(t, 1, profiles[0].Missing)
	assert.Equal(t, cme.ColumnAngularWidth, profiles[1].Name)
	assert.Equal(t, 1, profiles[1].Count)
	assert.Equal(t, 2, profiles[1].Missing)
}
