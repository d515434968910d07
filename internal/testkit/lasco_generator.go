package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// Catalog headers as they appear in the LASCO export, stray spaces included
var CatalogHeaders = []string{
	"Date",
	"Time",
	"Central PA [deg]",
	" AngularWidth [deg]",
	"LinearSpeed [km/s] ",
	"Accel [m/s^2]",
	"Remarks",
}

const missingToken = "----"

// LascoGeneratorConfig configures the synthetic catalog generator
type LascoGeneratorConfig struct {
	EventCount  int       `json:"event_count"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	HaloRate    float64   `json:"halo_rate"`    // share of 360° events
	MissingRate float64   `json:"missing_rate"` // share of events with a "----" speed
	Seed        int64     `json:"seed"`
}

// DefaultLascoConfig returns sensible defaults for catalog generation
func DefaultLascoConfig() LascoGeneratorConfig {
	return LascoGeneratorConfig{
		EventCount:  500,
		StartDate:   time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2003, 12, 31, 23, 59, 59, 0, time.UTC),
		HaloRate:    0.05,
		MissingRate: 0.03,
		Seed:        42,
	}
}

// CatalogEvent is one generated catalog row. Speed is NaN for a missing value.
type CatalogEvent struct {
	At        time.Time
	CentralPA string
	Width     float64
	Speed     float64
	Accel     float64
	Remarks   string
}

// LascoDataGenerator generates a reproducible SOHO/LASCO-like CME catalog
type LascoDataGenerator struct {
	config LascoGeneratorConfig
	rng    *rand.Rand
}

// NewLascoDataGenerator creates a new catalog generator
func NewLascoDataGenerator(config LascoGeneratorConfig) *LascoDataGenerator {
	return &LascoDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateEvents generates the configured number of events in time order
func (g *LascoDataGenerator) GenerateEvents() []CatalogEvent {
	events := make([]CatalogEvent, g.config.EventCount)
	span := g.config.EndDate.Sub(g.config.StartDate)
	step := span / time.Duration(maxInt(g.config.EventCount, 1))

	for i := range events {
		at := g.config.StartDate.Add(time.Duration(i) * step).Add(time.Duration(g.rng.Int63n(int64(step) + 1)))
		events[i] = g.generateEvent(at)
	}
	return events
}

func (g *LascoDataGenerator) generateEvent(at time.Time) CatalogEvent {
	ev := CatalogEvent{At: at.Truncate(time.Second)}

	// Speeds are roughly log-normal around 400 km/s
	ev.Speed = math.Round(math.Exp(g.rng.NormFloat64()*0.55 + math.Log(400)))
	if g.rng.Float64() < g.config.MissingRate {
		ev.Speed = math.NaN()
	}

	if g.rng.Float64() < g.config.HaloRate {
		ev.Width = 360
		ev.CentralPA = "Halo"
		ev.Remarks = "Halo"
	} else {
		w := math.Round(math.Exp(g.rng.NormFloat64()*0.6 + math.Log(45)))
		ev.Width = math.Max(2, math.Min(w, 359))
		ev.CentralPA = fmt.Sprintf("%d", g.rng.Intn(360))
	}

	ev.Accel = math.Round(g.rng.NormFloat64()*15*10) / 10
	if ev.Remarks == "" && g.rng.Float64() < 0.1 {
		ev.Remarks = "Poor Event"
	}
	return ev
}

// WriteWorkbook writes events as a single-sheet workbook in catalog layout
func WriteWorkbook(path string, events []CatalogEvent) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, header := range CatalogHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, ev := range events {
		row := i + 2
		var speed interface{} = ev.Speed
		if math.IsNaN(ev.Speed) {
			speed = missingToken
		}
		values := []interface{}{
			ev.At.Format("2006/01/02"),
			ev.At.Format("15:04:05"),
			ev.CentralPA,
			ev.Width,
			speed,
			ev.Accel,
			ev.Remarks,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// ExpectedCounts classifies events with a plain interval check so tests
// have an oracle independent of the range types
func ExpectedCounts(events []CatalogEvent) map[[2]string]int {
	counts := make(map[[2]string]int)
	for _, ev := range events {
		speed, width := speedLabel(ev.Speed), widthLabel(ev.Width)
		if speed == "" || width == "" {
			continue
		}
		counts[[2]string{speed, width}]++
	}
	return counts
}

func speedLabel(v float64) string {
	switch {
	case v >= 500 && v <= 599:
		return "500-599 km/s"
	case v >= 600 && v <= 699:
		return "600-699 km/s"
	case v >= 700 && v <= 799:
		return "700-799 km/s"
	case v >= 800 && v <= 900:
		return "800-900 km/s"
	case v >= 901:
		return ">900 km/s"
	}
	return ""
}

func widthLabel(v float64) string {
	switch {
	case v >= 45 && v <= 60:
		return "45-60°"
	case v >= 61 && v <= 90:
		return "61-90°"
	case v >= 91:
		return ">90°"
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
