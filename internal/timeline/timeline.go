// Package timeline turns raw log records into executions on a relative
// millisecond timeline and cuts them to the display window.
package timeline

import (
	"errors"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/ganttlog"
)

const DefaultWindow = 500 * time.Millisecond

var ErrEmptyWindow = errors.New("no log data found within the display window")

type Execution struct {
	TaskName   string  `json:"task_name"`
	Priority   int     `json:"priority"`
	StartMs    float64 `json:"start_ms"`
	EndMs      float64 `json:"end_ms"`
	DurationMs float64 `json:"duration_ms"`
}

func ToMilliseconds(sec, nsec int64) float64 {
	return float64(sec)*1000 + float64(nsec)/1_000_000
}

// Normalize converts records to executions shifted so that the earliest
// start is 0 ms. Durations are end minus start and may be negative when the
// log is.
func Normalize(records []ganttlog.LogRecord) []Execution {
	if len(records) == 0 {
		return nil
	}

	execs := make([]Execution, len(records))
	for i, rec := range records {
		start := ToMilliseconds(rec.StartSec, rec.StartNsec)
		end := ToMilliseconds(rec.EndSec, rec.EndNsec)
		execs[i] = Execution{
			TaskName:   rec.TaskName,
			Priority:   rec.Priority,
			StartMs:    start,
			EndMs:      end,
			DurationMs: end - start,
		}
	}

	minStart := execs[0].StartMs
	for _, e := range execs[1:] {
		if e.StartMs < minStart {
			minStart = e.StartMs
		}
	}

	for i := range execs {
		execs[i].StartMs -= minStart
		execs[i].EndMs -= minStart
	}

	return execs
}

// Window keeps executions starting strictly before the window length.
func Window(execs []Execution, window time.Duration) []Execution {
	limit := Milliseconds(window)

	var kept []Execution
	for _, e := range execs {
		if e.StartMs < limit {
			kept = append(kept, e)
		}
	}

	return kept
}

func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
