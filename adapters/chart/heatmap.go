package chart

import (
	"fmt"
	"strconv"

	"cmegrid/domain/cme"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	heatmapTitle  = "Distribución de CME por Velocidad y Anchura Angular"
	heatmapXLabel = "Rango de Anchura Angular (grados)"
	heatmapYLabel = "Rango de Velocidad (km/s)"
	heatmapLegend = "Número de CME"
)

// pivotGrid exposes a pivot table as plotter.GridXYZ. Grid row 0 is the
// last pivot row so the first speed range is drawn at the top.
type pivotGrid struct {
	pivot *cme.PivotTable
}

func (g pivotGrid) Dims() (c, r int) {
	rows, cols := g.pivot.Dims()
	return cols, rows
}

func (g pivotGrid) Z(c, r int) float64 {
	rows, _ := g.pivot.Dims()
	return float64(g.pivot.At(rows-1-r, c))
}

func (g pivotGrid) X(c int) float64 { return float64(c) }

func (g pivotGrid) Y(r int) float64 { return float64(r) }

func drawHeatmap(dc draw.Canvas, pivot *cme.PivotTable) error {
	pal, err := brewer.GetPalette(brewer.TypeAny, "YlOrRd", 9)
	if err != nil {
		return err
	}

	grid := pivotGrid{pivot: pivot}
	hm := plotter.NewHeatMap(grid, pal)
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = heatmapTitle
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = heatmapXLabel
	p.Y.Label.Text = heatmapYLabel
	p.Add(hm)

	labels, err := cellLabels(grid)
	if err != nil {
		return err
	}
	p.Add(labels)

	p.NominalX(pivot.ColumnLabels...)
	rows, _ := pivot.Dims()
	speedLabels := make([]string, rows)
	for i, label := range pivot.RowLabels {
		speedLabels[rows-1-i] = label
	}
	p.NominalY(speedLabels...)
	p.X.Padding = 0
	p.Y.Padding = 0

	legend := plot.NewLegend()
	legend.Top = true
	legend.Add(heatmapLegend)
	thumbs := plotter.PaletteThumbnailers(pal)
	for i := len(thumbs) - 1; i >= 0; i-- {
		switch i {
		case len(thumbs) - 1:
			legend.Add(strconv.FormatFloat(hm.Max, 'f', 0, 64), thumbs[i])
		case 0:
			legend.Add(strconv.FormatFloat(hm.Min, 'f', 0, 64), thumbs[i])
		default:
			legend.Add("", thumbs[i])
		}
	}

	legend.Draw(dc)
	p.Draw(plotArea(dc, &legend))
	return nil
}

// cellLabels annotates every cell with its count
func cellLabels(grid pivotGrid) (*plotter.Labels, error) {
	cols, rows := grid.Dims()
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, cols*rows),
		Labels: make([]string, 0, cols*rows),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			xyl.XYs = append(xyl.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			xyl.Labels = append(xyl.Labels, fmt.Sprintf("%d", int(grid.Z(c, r))))
		}
	}

	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(12)
	}
	return labels, nil
}
