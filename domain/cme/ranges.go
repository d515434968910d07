package cme

import (
	"fmt"
	"math"
)

// Column names expected in the input spreadsheet, after header trimming
const (
	ColumnLinearSpeed  = "LinearSpeed [km/s]"
	ColumnAngularWidth = "AngularWidth [deg]"
)

// Range is a closed numeric interval with a display label.
// A Max of +Inf leaves the interval open above.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// NewRange creates a bounded range
func NewRange(min, max float64, label string) Range {
	return Range{Min: min, Max: max, Label: label}
}

// NewOpenRange creates a range with no upper bound
func NewOpenRange(min float64, label string) Range {
	return Range{Min: min, Max: math.Inf(1), Label: label}
}

// Unbounded reports whether the range has no upper limit
func (r Range) Unbounded() bool {
	return math.IsInf(r.Max, 1)
}

// Contains reports whether v lies inside the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if v < r.Min {
		return false
	}
	return r.Unbounded() || v <= r.Max
}

func (r Range) String() string {
	if r.Unbounded() {
		return fmt.Sprintf("%s [%g, +inf)", r.Label, r.Min)
	}
	return fmt.Sprintf("%s [%g, %g]", r.Label, r.Min, r.Max)
}

// RangeSet is an ordered list of ranges along one dimension
type RangeSet []Range

// Labels returns the labels in declaration order
func (s RangeSet) Labels() []string {
	labels := make([]string, len(s))
	for i, r := range s {
		labels[i] = r.Label
	}
	return labels
}

// Locate returns the index of the first range containing v, or -1
func (s RangeSet) Locate(v float64) int {
	for i, r := range s {
		if r.Contains(v) {
			return i
		}
	}
	return -1
}

// Validate checks that the set is usable for classification
func (s RangeSet) Validate() error {
	if len(s) == 0 {
		return ErrEmptyRanges
	}
	seen := make(map[string]bool, len(s))
	for _, r := range s {
		if r.Label == "" {
			return fmt.Errorf("%w: range [%g, %g] has no label", ErrInvalidRange, r.Min, r.Max)
		}
		if seen[r.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidRange, r.Label)
		}
		seen[r.Label] = true
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Max < r.Min {
			return fmt.Errorf("%w: %s", ErrInvalidRange, r)
		}
	}
	return nil
}

// DefaultSpeedRanges returns the linear speed ranges in km/s
func DefaultSpeedRanges() RangeSet {
	return RangeSet{
		NewRange(500, 599, "500-599 km/s"),
		NewRange(600, 699, "600-699 km/s"),
		NewRange(700, 799, "700-799 km/s"),
		NewRange(800, 900, "800-900 km/s"),
		NewOpenRange(901, ">900 km/s"),
	}
}

// DefaultWidthRanges returns the angular width ranges in degrees
func DefaultWidthRanges() RangeSet {
	return RangeSet{
		NewRange(45, 60, "45-60°"),
		NewRange(61, 90, "61-90°"),
		NewOpenRange(91, ">90°"),
	}
}

// Grid pairs the two range dimensions used for classification
type Grid struct {
	Speed RangeSet
	Width RangeSet
}

// DefaultGrid returns the 5x3 speed/width grid
func DefaultGrid() Grid {
	return Grid{Speed: DefaultSpeedRanges(), Width: DefaultWidthRanges()}
}

// Validate checks both dimensions
func (g Grid) Validate() error {
	if err := g.Speed.Validate(); err != nil {
		return fmt.Errorf("speed ranges: %w", err)
	}
	if err := g.Width.Validate(); err != nil {
		return fmt.Errorf("width ranges: %w", err)
	}
	return nil
}

// Size returns the number of buckets in the grid
func (g Grid) Size() int {
	return len(g.Speed) * len(g.Width)
}
