package run

import (
	"fmt"
	"time"

	"cmegrid/domain/cme"
	"cmegrid/domain/core"
)

// Manifest records what one classification run read and counted.
// It is what the run archive stores and what replays are compared against.
type Manifest struct {
	RunID             core.RunID `json:"run_id" db:"run_id"`
	Source            string     `json:"source" db:"source"`
	RecordsLoaded     int        `json:"records_loaded" db:"records_loaded"`
	RecordsClassified int        `json:"records_classified" db:"records_classified"`
	MissingSpeed      int        `json:"missing_speed" db:"missing_speed"`
	MissingWidth      int        `json:"missing_width" db:"missing_width"`
	Fingerprint       core.Hash  `json:"fingerprint" db:"fingerprint"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	Counts            []cme.Cell `json:"counts" db:"-"`
}

// NewManifest summarises a finished classification
func NewManifest(runID core.RunID, ds *cme.Dataset, table *cme.ResultTable, createdAt time.Time) *Manifest {
	counts := make([]cme.Cell, len(table.Buckets))
	for i, b := range table.Buckets {
		counts[i] = cme.Cell{Row: b.Speed.Label, Column: b.Width.Label, Count: b.Count}
	}

	return &Manifest{
		RunID:             runID,
		Source:            ds.Source,
		RecordsLoaded:     ds.Len(),
		RecordsClassified: table.Total(),
		MissingSpeed:      ds.MissingSpeed,
		MissingWidth:      ds.MissingWidth,
		Fingerprint:       table.Fingerprint(),
		CreatedAt:         createdAt.UTC(),
		Counts:            counts,
	}
}

// Total sums the stored counts
func (m *Manifest) Total() int {
	total := 0
	for _, c := range m.Counts {
		total += c.Count
	}
	return total
}

// Validate checks if the manifest is complete and self-consistent
func (m *Manifest) Validate() error {
	if m.RunID.IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.IsEmpty() {
		return fmt.Errorf("run manifest: fingerprint cannot be empty")
	}
	if len(m.Counts) == 0 {
		return fmt.Errorf("run manifest: no bucket counts")
	}
	if total := m.Total(); total != m.RecordsClassified {
		return fmt.Errorf("run manifest: counts sum to %d but %d records were classified", total, m.RecordsClassified)
	}
	if m.RecordsClassified > m.RecordsLoaded {
		return fmt.Errorf("run manifest: %d classified exceeds %d loaded", m.RecordsClassified, m.RecordsLoaded)
	}
	return nil
}

// SameCounts reports whether two runs produced identical bucket counts
func (m *Manifest) SameCounts(other *Manifest) bool {
	return other != nil && m.Fingerprint.Equals(other.Fingerprint)
}
