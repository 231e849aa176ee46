package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var outline = draw.LineStyle{
	Color: color.Black,
	Width: vg.Points(0.8),
}

type barPlotter struct {
	gantt *Gantt
}

func (b *barPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for _, bar := range b.gantt.Bars {
		y0 := float64(bar.Row) - BarHeight/2
		y1 := float64(bar.Row) + BarHeight/2

		pts := []vg.Point{
			{X: trX(bar.Start), Y: trY(y0)},
			{X: trX(bar.End), Y: trY(y0)},
			{X: trX(bar.End), Y: trY(y1)},
			{X: trX(bar.Start), Y: trY(y1)},
		}

		c.FillPolygon(bar.Color, c.ClipPolygonXY(pts))
		c.StrokeLines(outline, c.ClipLinesXY(append(pts, pts[0]))...)
	}
}

// DataRange covers every bar edge and half a row above and below the
// outermost rows.
func (b *barPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, bar := range b.gantt.Bars {
		xmin = math.Min(xmin, math.Min(bar.Start, bar.End))
		xmax = math.Max(xmax, math.Max(bar.Start, bar.End))
	}
	if len(b.gantt.Bars) == 0 {
		xmin, xmax = 0, 1
	}

	ymin = -0.5
	ymax = float64(len(b.gantt.Rows)) - 0.5
	if len(b.gantt.Rows) == 0 {
		ymax = 0.5
	}

	return xmin, xmax, ymin, ymax
}
