package chart

import (
	"math"

	"cmegrid/domain/cme"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	barsTitle  = "Conteo de CME por Rangos de Velocidad y Ancho angular"
	barsXLabel = "Rango de Velocidad (km/s)"
	barsYLabel = "Número de CME"
	barsLegend = "Anchura Angular"
)

var barWidth = vg.Points(20)

// barOffsets centers n bars of width w around each group's tick
func barOffsets(n int, w vg.Length) []vg.Length {
	offsets := make([]vg.Length, n)
	for i := range offsets {
		offsets[i] = w * vg.Length(float64(i)-float64(n-1)/2)
	}
	return offsets
}

// newBarsPlot builds the grouped bar plot and its legend. The x range is
// widened by half a group on each side so offset bars stay on the axes.
func newBarsPlot(pivot *cme.PivotTable) (*plot.Plot, *plot.Legend, error) {
	p := plot.New()
	p.Title.Text = barsTitle
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = barsXLabel
	p.Y.Label.Text = barsYLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	rows, cols := pivot.Dims()
	offsets := barOffsets(cols, barWidth)

	legend := plot.NewLegend()
	legend.Top = true
	legend.Add(barsLegend)
	for j := 0; j < cols; j++ {
		values := make(plotter.Values, 0, rows)
		for _, n := range pivot.Column(j) {
			values = append(values, float64(n))
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(j)
		bars.Offset = offsets[j]

		p.Add(bars)
		legend.Add(pivot.ColumnLabels[j], bars)
	}

	p.NominalX(pivot.RowLabels...)
	p.X.Tick.Label.Rotation = math.Pi / 8
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min = -0.5
	p.X.Max = float64(rows) - 0.5
	p.Y.Min = 0

	return p, &legend, nil
}

// plotArea is the part of dc left to the axes once the legend is placed
// at the right edge
func plotArea(dc draw.Canvas, legend *plot.Legend) draw.Canvas {
	r := legend.Rectangle(dc)
	return draw.Crop(dc, 0, -(r.Max.X-r.Min.X)-vg.Millimeter, 0, 0)
}

func drawBars(dc draw.Canvas, pivot *cme.PivotTable) error {
	p, legend, err := newBarsPlot(pivot)
	if err != nil {
		return err
	}
	legend.Draw(dc)
	p.Draw(plotArea(dc, legend))
	return nil
}
