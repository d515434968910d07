package cme

import (
	"fmt"
	"math"
	"strings"

	"cmegrid/domain/core"
)

// Record is one observed CME. Missing measurements are NaN.
type Record struct {
	LinearSpeed  float64 `json:"linear_speed"`
	AngularWidth float64 `json:"angular_width"`
}

// NewRecord builds a record from possibly-missing measurements
func NewRecord(speed, width float64) Record {
	return Record{LinearSpeed: speed, AngularWidth: width}
}

// Complete reports whether both measurements are present
func (r Record) Complete() bool {
	return !math.IsNaN(r.LinearSpeed) && !math.IsNaN(r.AngularWidth)
}

// Bucket is one speed/width cell and the number of records it holds
type Bucket struct {
	Speed Range `json:"speed"`
	Width Range `json:"width"`
	Count int   `json:"count"`
}

// Matches reports whether the record belongs in this bucket
func (b Bucket) Matches(r Record) bool {
	return b.Speed.Contains(r.LinearSpeed) && b.Width.Contains(r.AngularWidth)
}

// ResultTable is the flat, speed-major list of bucket counts for one run
type ResultTable struct {
	Buckets []Bucket `json:"buckets"`
}

// Classify counts the records falling into each speed x width bucket.
// Records with a missing value or outside every range are not counted.
func Classify(records []Record, grid Grid) (*ResultTable, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, grid.Size())
	for _, speed := range grid.Speed {
		for _, width := range grid.Width {
			b := Bucket{Speed: speed, Width: width}
			for _, r := range records {
				if b.Matches(r) {
					b.Count++
				}
			}
			buckets = append(buckets, b)
		}
	}

	return &ResultTable{Buckets: buckets}, nil
}

// Total returns the sum of all bucket counts
func (t *ResultTable) Total() int {
	total := 0
	for _, b := range t.Buckets {
		total += b.Count
	}
	return total
}

// Count returns the count for the given labels and whether the bucket exists
func (t *ResultTable) Count(speedLabel, widthLabel string) (int, bool) {
	for _, b := range t.Buckets {
		if b.Speed.Label == speedLabel && b.Width.Label == widthLabel {
			return b.Count, true
		}
	}
	return 0, false
}

// Fingerprint hashes the ordered bucket labels and counts.
// Two runs over the same input produce the same fingerprint.
func (t *ResultTable) Fingerprint() core.Hash {
	var data strings.Builder
	for _, b := range t.Buckets {
		data.WriteString(fmt.Sprintf("%s|%s|%d\n", b.Speed.Label, b.Width.Label, b.Count))
	}
	return core.NewHash([]byte(data.String()))
}

// InDomain reports whether a record falls inside the grid's declared
// domain, i.e. whether it is expected to be counted exactly once.
func (g Grid) InDomain(r Record) bool {
	return g.Speed.Locate(r.LinearSpeed) >= 0 && g.Width.Locate(r.AngularWidth) >= 0
}
