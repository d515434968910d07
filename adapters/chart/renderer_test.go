package chart

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cmegrid/domain/cme"
	"cmegrid/internal"
	apperrors "cmegrid/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func samplePivot(t *testing.T, records ...cme.Record) *cme.PivotTable {
	t.Helper()
	table, err := cme.Classify(records, cme.DefaultGrid())
	require.NoError(t, err)
	pivot, err := cme.Pivot(table)
	require.NoError(t, err)
	return pivot
}

func newTestRenderer() *Renderer {
	return NewRenderer(internal.NewLoggerWithOutput(internal.LogLevelError, &bytes.Buffer{}))
}

func decodePNG(t *testing.T, path string) (width, height int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRenderHeatmap(t *testing.T) {
	pivot := samplePivot(t, cme.NewRecord(550, 50), cme.NewRecord(950, 95), cme.NewRecord(950, 100))
	path := filepath.Join(t.TempDir(), "charts", "heatmap_cme.png")

	require.NoError(t, newTestRenderer().RenderHeatmap(context.Background(), pivot, path))

	w, h := decodePNG(t, path)
	assert.Equal(t, 10*DPI, w)
	assert.Equal(t, 6*DPI, h)
}

func TestRenderHeatmap_AllZero(t *testing.T) {
	pivot := samplePivot(t)
	path := filepath.Join(t.TempDir(), "heatmap_cme.png")

	require.NoError(t, newTestRenderer().RenderHeatmap(context.Background(), pivot, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRenderBars(t *testing.T) {
	pivot := samplePivot(t, cme.NewRecord(650, 70), cme.NewRecord(850, 45), cme.NewRecord(1200, 200))
	path := filepath.Join(t.TempDir(), "barras_cme.png")

	require.NoError(t, newTestRenderer().RenderBars(context.Background(), pivot, path))

	w, h := decodePNG(t, path)
	assert.Equal(t, 12*DPI, w)
	assert.Equal(t, 7*DPI, h)
}

func TestBarsPlot_GroupsStayInsideAxes(t *testing.T) {
	pivot := samplePivot(t,
		cme.NewRecord(550, 50), cme.NewRecord(550, 70), cme.NewRecord(550, 120),
		cme.NewRecord(1200, 50), cme.NewRecord(1200, 70), cme.NewRecord(1200, 200),
	)
	rows, cols := pivot.Dims()

	p, legend, err := newBarsPlot(pivot)
	require.NoError(t, err)
	assert.Equal(t, "Número de CME", p.Y.Label.Text)
	assert.Equal(t, -0.5, p.X.Min)
	assert.Equal(t, float64(rows)-0.5, p.X.Max)

	dc := draw.New(newCanvas(12*vg.Inch, 7*vg.Inch))
	area := plotArea(dc, legend)
	data := p.DataCanvas(area)
	x, _ := p.Transforms(&data)

	offsets := barOffsets(cols, barWidth)
	left := x(0) + offsets[0] - barWidth/2
	right := x(float64(rows-1)) + offsets[cols-1] + barWidth/2
	assert.GreaterOrEqual(t, float64(left), float64(data.Min.X), "first group starts left of the axes")
	assert.LessOrEqual(t, float64(right), float64(data.Max.X), "last group ends right of the axes")

	box := legend.Rectangle(dc)
	assert.Greater(t, float64(box.Min.X), float64(area.Max.X), "legend overlaps the plot area")
}

func TestRender_RejectsNilPivot(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer()

	err := r.RenderHeatmap(context.Background(), nil, filepath.Join(dir, "h.png"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRenderError))
	assert.ErrorIs(t, err, cme.ErrMalformedPivot)

	err = r.RenderBars(context.Background(), nil, filepath.Join(dir, "b.png"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRenderError))

	_, statErr := os.Stat(filepath.Join(dir, "h.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newTestRenderer().RenderBars(ctx, samplePivot(t), filepath.Join(t.TempDir(), "b.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPivotGrid_FirstRowOnTop(t *testing.T) {
	pivot, err := cme.NewPivotTable([]string{"slow", "fast"}, []string{"narrow", "wide"}, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)

	g := pivotGrid{pivot: pivot}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 3.0, g.Z(0, 0), "bottom row is the last pivot row")
	assert.Equal(t, 2.0, g.Z(1, 1), "top row is the first pivot row")
}

func TestBarOffsets(t *testing.T) {
	w := vg.Points(10)
	assert.Equal(t, []vg.Length{-10, 0, 10}, barOffsets(3, w))
	assert.Equal(t, []vg.Length{-5, 5}, barOffsets(2, w))
	assert.Equal(t, []vg.Length{0}, barOffsets(1, w))
}
