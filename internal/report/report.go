// Package report aggregates windowed executions into a per-task summary
// that can be printed to the console or saved as CSV or JSON.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/task"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/segmentio/encoding/json"
)

var Header = []string{"Task", "Priority", "Executions", "Total (ms)", "Avg (ms)", "Min (ms)", "Max (ms)", "Utilization (%)"}

type Row struct {
	Task        task.Info `json:"-"`
	Executions  int       `json:"executions"`
	TotalMs     float64   `json:"total_ms"`
	AvgMs       float64   `json:"avg_ms"`
	MinMs       float64   `json:"min_ms"`
	MaxMs       float64   `json:"max_ms"`
	Utilization float64   `json:"utilization"`
}

// Summarize returns one row per task in chart order. Utilization is busy
// time as a share of the display window.
func Summarize(execs []timeline.Execution, infos []task.Info, window time.Duration) []Row {
	rows := make([]Row, len(infos))
	pos := make(map[string]int, len(infos))
	for i, info := range infos {
		rows[i] = Row{Task: info, MinMs: math.Inf(1), MaxMs: math.Inf(-1)}
		pos[info.Name] = i
	}

	for _, e := range execs {
		i, ok := pos[e.TaskName]
		if !ok {
			continue
		}
		r := &rows[i]
		r.Executions++
		r.TotalMs += e.DurationMs
		r.MinMs = math.Min(r.MinMs, e.DurationMs)
		r.MaxMs = math.Max(r.MaxMs, e.DurationMs)
	}

	windowMs := timeline.Milliseconds(window)
	for i := range rows {
		r := &rows[i]
		if r.Executions == 0 {
			r.MinMs, r.MaxMs = 0, 0
			continue
		}
		r.AvgMs = r.TotalMs / float64(r.Executions)
		if windowMs > 0 {
			r.Utilization = 100 * r.TotalMs / windowMs
		}
	}

	return rows
}

// Table renders rows as strings with Header as the first row.
func Table(rows []Row) [][]string {
	data := [][]string{Header}
	for _, r := range rows {
		data = append(data, []string{
			r.Task.Name,
			fmt.Sprintf("%d", r.Task.Priority),
			fmt.Sprintf("%d", r.Executions),
			formatFloat(r.TotalMs, 3),
			formatFloat(r.AvgMs, 3),
			formatFloat(r.MinMs, 3),
			formatFloat(r.MaxMs, 3),
			formatFloat(r.Utilization, 2),
		})
	}

	return data
}

func formatFloat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// Save writes the table to path. A .json extension selects JSON, anything
// else CSV.
func Save(path string, data [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return saveAsJSON(path, data)
	default:
		return saveAsCSV(path, data)
	}
}

func saveAsCSV(path string, data [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if fileErr := file.Close(); fileErr != nil {
			log.Printf("failed to close file: %v", fileErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(data); err != nil {
		return err
	}

	return writer.Error()
}

func saveAsJSON(path string, data [][]string) error {
	if len(data) < 2 {
		return errors.New("insufficient data for JSON export")
	}

	headers := data[0]
	records := make([]map[string]string, 0, len(data)-1)
	for _, row := range data[1:] {
		record := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		records = append(records, record)
	}

	out, err := json.MarshalIndent(map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"data":         records,
		"total_rows":   len(records),
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(out, '\n'), 0644)
}
