// Package task derives per-task chart metadata from executions: stacking
// rank by priority and a colour from the fixed palette.
package task

import (
	"fmt"
	"sort"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is cycled by rank; the 8th task reuses the 1st colour.
var Palette = mustParsePalette(
	"#E63946", // red
	"#457B9D", // blue
	"#F4A261", // orange
	"#2A9D8F", // green
	"#1D3557", // dark blue
	"#9A8C98", // grey
	"#FF6347", // tomato
)

type Info struct {
	Name     string         `json:"name"`
	Priority int            `json:"priority"`
	Rank     int            `json:"rank"`
	Color    colorful.Color `json:"-"`
}

func (i Info) Label() string {
	return fmt.Sprintf("%s (Prio %d)", i.Name, i.Priority)
}

func (i Info) Hex() string {
	return i.Color.Hex()
}

// Assign groups executions by task name. Each task keeps the first priority
// seen for it; tasks are ranked by priority descending, ties in first-seen
// order.
func Assign(execs []timeline.Execution) []Info {
	seen := make(map[string]bool)
	var infos []Info
	for _, e := range execs {
		if seen[e.TaskName] {
			continue
		}
		seen[e.TaskName] = true
		infos = append(infos, Info{Name: e.TaskName, Priority: e.Priority})
	}

	sort.SliceStable(infos, func(a, b int) bool {
		return infos[a].Priority > infos[b].Priority
	})

	for i := range infos {
		infos[i].Rank = i
		infos[i].Color = ColorFor(i)
	}

	return infos
}

func ColorFor(rank int) colorful.Color {
	return Palette[rank%len(Palette)]
}

func Index(infos []Info) map[string]Info {
	byName := make(map[string]Info, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	return byName
}

func mustParsePalette(hexes ...string) []colorful.Color {
	palette := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("task: invalid palette colour %q: %v", h, err))
		}
		palette[i] = c
	}

	return palette
}
