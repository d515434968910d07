package profiling

// ColumnProfile summarises one numeric column. NaN values are counted as
// missing and excluded from every statistic.
type ColumnProfile struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// Empty reports whether the column had no usable values
func (p ColumnProfile) Empty() bool {
	return p.Count == 0
}

// IQR is the interquartile range
func (p ColumnProfile) IQR() float64 {
	return p.Q3 - p.Q1
}
