// Package chart lays out and renders the Gantt chart as a PNG image.
package chart

import (
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/task"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultOutput = "rtsounds_gantt_chart_FINAL.png"
	DefaultTitle  = "Task Execution Gantt Chart"

	DPI    = 300
	Width  = 20 * vg.Inch
	Height = 10 * vg.Inch

	// BarHeight is the bar thickness in row units.
	BarHeight = 0.8
)

var gridColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}

type Bar struct {
	Task  string
	Row   int
	Start float64
	End   float64
	Color color.Color
}

type Gantt struct {
	Title string
	Rows  []task.Info
	Bars  []Bar
}

// Build places one bar per execution on its task's row. A bar spans
// [start, start+duration].
func Build(execs []timeline.Execution, infos []task.Info, title string) *Gantt {
	byName := task.Index(infos)

	g := &Gantt{
		Title: title,
		Rows:  infos,
		Bars:  make([]Bar, 0, len(execs)),
	}
	for _, e := range execs {
		info, ok := byName[e.TaskName]
		if !ok {
			continue
		}
		g.Bars = append(g.Bars, Bar{
			Task:  e.TaskName,
			Row:   info.Rank,
			Start: e.StartMs,
			End:   e.StartMs + e.DurationMs,
			Color: info.Color,
		})
	}

	return g
}

// Figure builds the gonum plot for g. Rank 0 is drawn at the top.
func (g *Gantt) Figure() *plot.Plot {
	p := plot.New()

	p.Title.Text = g.Title
	p.Title.TextStyle.Font.Size = vg.Points(18)

	p.X.Label.Text = "Time (milliseconds)"
	p.X.Label.TextStyle.Font.Size = vg.Points(14)

	ticks := make([]plot.Tick, len(g.Rows))
	for i, info := range g.Rows {
		ticks[i] = plot.Tick{Value: float64(info.Rank), Label: info.Label()}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}

	grid := plotter.NewGrid()
	grid.Vertical = draw.LineStyle{
		Color:  gridColor,
		Width:  vg.Points(0.8),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}
	grid.Horizontal = draw.LineStyle{
		Color:  gridColor,
		Width:  vg.Points(0.8),
		Dashes: []vg.Length{vg.Points(1), vg.Points(2)},
	}

	p.Add(grid, &barPlotter{gantt: g})

	return p
}

// Render draws g at 300 DPI and writes it to path, replacing any existing file.
func Render(g *Gantt, path string) error {
	canvas := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(DPI))
	g.Figure().Draw(draw.New(canvas))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("failed to close chart file: %v", closeErr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(file); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}

	return nil
}
