package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cmegrid/domain/cme"
	"cmegrid/internal"
	apperrors "cmegrid/internal/errors"
	"cmegrid/ports"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI is the resolution of every rendered image
const DPI = 300

// Renderer draws pivot tables with gonum/plot
type Renderer struct {
	logger *internal.Logger
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// NewRenderer creates a chart renderer
func NewRenderer(logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{logger: logger.With("chart")}
}

// RenderHeatmap draws the annotated speed x width heatmap
func (r *Renderer) RenderHeatmap(ctx context.Context, pivot *cme.PivotTable, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPivot(pivot); err != nil {
		return apperrors.RenderError("heatmap", err)
	}

	img := newCanvas(10*vg.Inch, 6*vg.Inch)
	if err := drawHeatmap(draw.New(img), pivot); err != nil {
		return apperrors.RenderError("heatmap", err)
	}
	if err := writePNG(img, path); err != nil {
		return apperrors.RenderError("heatmap", err)
	}
	r.logger.Info("Heatmap written to %s", path)
	return nil
}

// RenderBars draws the grouped bar chart, one series per width range
func (r *Renderer) RenderBars(ctx context.Context, pivot *cme.PivotTable, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPivot(pivot); err != nil {
		return apperrors.RenderError("bar chart", err)
	}

	img := newCanvas(12*vg.Inch, 7*vg.Inch)
	if err := drawBars(draw.New(img), pivot); err != nil {
		return apperrors.RenderError("bar chart", err)
	}
	if err := writePNG(img, path); err != nil {
		return apperrors.RenderError("bar chart", err)
	}
	r.logger.Info("Bar chart written to %s", path)
	return nil
}

func checkPivot(pivot *cme.PivotTable) error {
	if pivot == nil {
		return fmt.Errorf("%w: nil pivot", cme.ErrMalformedPivot)
	}
	if rows, cols := pivot.Dims(); rows == 0 || cols == 0 {
		return fmt.Errorf("%w: empty pivot", cme.ErrMalformedPivot)
	}
	return nil
}

func newCanvas(w, h vg.Length) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))
}

func writePNG(img *vgimg.Canvas, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
