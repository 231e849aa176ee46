package chart

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/task"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
)

func sampleExecutions() []timeline.Execution {
	return []timeline.Execution{
		{TaskName: "FFT", Priority: 20, StartMs: 0, EndMs: 30, DurationMs: 30},
		{TaskName: "Audio", Priority: 70, StartMs: 5, EndMs: 7.5, DurationMs: 2.5},
		{TaskName: "FFT", Priority: 20, StartMs: 100, EndMs: 130, DurationMs: 30},
	}
}

func TestBuild(t *testing.T) {
	execs := sampleExecutions()
	infos := task.Assign(execs)

	g := Build(execs, infos, DefaultTitle)

	require.Len(t, g.Bars, 3)
	assert.Equal(t, DefaultTitle, g.Title)

	assert.Equal(t, "FFT", g.Bars[0].Task)
	assert.Equal(t, 1, g.Bars[0].Row)
	assert.Equal(t, 0.0, g.Bars[0].Start)
	assert.Equal(t, 30.0, g.Bars[0].End)
	assert.Equal(t, task.Palette[1], g.Bars[0].Color)

	assert.Equal(t, 0, g.Bars[1].Row)
	assert.Equal(t, 7.5, g.Bars[1].End)
	assert.Equal(t, task.Palette[0], g.Bars[1].Color)
}

func TestBuild_SkipsUnknownTasks(t *testing.T) {
	execs := sampleExecutions()
	infos := task.Assign(execs[:1])

	g := Build(execs, infos, DefaultTitle)

	assert.Len(t, g.Bars, 2)
}

func TestFigure_Labels(t *testing.T) {
	execs := sampleExecutions()
	g := Build(execs, task.Assign(execs), "trace")

	p := g.Figure()

	assert.Equal(t, "trace", p.Title.Text)
	assert.Equal(t, "Time (milliseconds)", p.X.Label.Text)

	ticks := p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max)
	require.Len(t, ticks, 2)
	assert.Equal(t, plot.Tick{Value: 0, Label: "Audio (Prio 70)"}, ticks[0])
	assert.Equal(t, plot.Tick{Value: 1, Label: "FFT (Prio 20)"}, ticks[1])

	_, inverted := p.Y.Scale.(plot.InvertedScale)
	assert.True(t, inverted, "y axis must put rank 0 at the top")
}

func TestBarPlotterDataRange(t *testing.T) {
	tests := []struct {
		name                   string
		gantt                  *Gantt
		xmin, xmax, ymin, ymax float64
	}{
		{
			name: "single bar",
			gantt: &Gantt{
				Rows: []task.Info{{Name: "TaskX", Priority: 5}},
				Bars: []Bar{{Row: 0, Start: 0, End: 100}},
			},
			xmin: 0, xmax: 100, ymin: -0.5, ymax: 0.5,
		},
		{
			name: "reversed bar",
			gantt: &Gantt{
				Rows: []task.Info{{Name: "A"}, {Name: "B", Rank: 1}},
				Bars: []Bar{{Row: 1, Start: 50, End: 20}},
			},
			xmin: 20, xmax: 50, ymin: -0.5, ymax: 1.5,
		},
		{
			name:  "empty",
			gantt: &Gantt{},
			xmin:  0, xmax: 1, ymin: -0.5, ymax: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xmin, xmax, ymin, ymax := (&barPlotter{gantt: tt.gantt}).DataRange()

			assert.Equal(t, tt.xmin, xmin)
			assert.Equal(t, tt.xmax, xmax)
			assert.Equal(t, tt.ymin, ymin)
			assert.Equal(t, tt.ymax, ymax)
		})
	}
}

func TestRender(t *testing.T) {
	execs := []timeline.Execution{
		{TaskName: "TaskX", Priority: 5, StartMs: 0, EndMs: 100, DurationMs: 100},
	}
	g := Build(execs, task.Assign(execs), DefaultTitle)
	path := filepath.Join(t.TempDir(), DefaultOutput)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, Render(g, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	assert.InDelta(t, 6000, cfg.Width, 1)
	assert.InDelta(t, 3000, cfg.Height, 1)
}

func TestRender_BadPath(t *testing.T) {
	execs := sampleExecutions()
	g := Build(execs, task.Assign(execs), DefaultTitle)

	err := Render(g, filepath.Join(t.TempDir(), "missing", "chart.png"))

	assert.Error(t, err)
}
