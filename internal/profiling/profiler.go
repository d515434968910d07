package profiling

import (
	"cmegrid/domain/cme"
)

// DataProfiler profiles the measurement columns of a dataset
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		analyzer: NewDistributionAnalyzer(),
	}
}

// ProfileColumn summarises a single column
func (dp *DataProfiler) ProfileColumn(name string, values []float64) ColumnProfile {
	profile, err := dp.analyzer.AnalyzeDistribution(name, values)
	if err != nil {
		// Return the counts alone on error
		return ColumnProfile{Name: name, Count: profile.Count, Missing: profile.Missing}
	}
	return profile
}

// ProfileDataset returns the speed and width profiles, in that order
func (dp *DataProfiler) ProfileDataset(ds *cme.Dataset) []ColumnProfile {
	return []ColumnProfile{
		dp.ProfileColumn(cme.ColumnLinearSpeed, ds.Speeds()),
		dp.ProfileColumn(cme.ColumnAngularWidth, ds.Widths()),
	}
}
