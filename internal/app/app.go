// Package app runs the chart pipeline end to end: load the log, normalise
// and window the executions, render the chart, then feed the optional sinks.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/chart"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/config"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/ganttlog"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/metrics"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/queue"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/report"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/repository"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/task"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/google/uuid"
)

type Result struct {
	RunID      string
	Stats      ganttlog.Stats
	Executions []timeline.Execution
	Tasks      []task.Info
	Summary    []report.Row
}

// Run executes one chart run. Console lines go to out; any returned error
// is fatal for the caller.
func Run(ctx context.Context, cfg config.Config, out io.Writer) (*Result, error) {
	res := &Result{RunID: uuid.New().String()}
	m := metrics.New()

	fmt.Fprintf(out, "Rendering Gantt chart from %s\n", cfg.LogFile)

	records, stats, err := ganttlog.Load(cfg.LogFile, cfg.RecordType)
	res.Stats = stats
	if err != nil {
		return res, err
	}
	m.RecordLoad(stats)

	execs := timeline.Window(timeline.Normalize(records), cfg.Window)
	if len(execs) == 0 {
		return res, fmt.Errorf("%w (first %g seconds)", timeline.ErrEmptyWindow, cfg.Window.Seconds())
	}
	res.Executions = execs
	m.RecordWindow(execs)

	fmt.Fprintf(out, "Loaded %d task executions.\n", len(execs))

	res.Tasks = task.Assign(execs)

	started := time.Now()
	if err := chart.Render(chart.Build(execs, res.Tasks, cfg.Title), cfg.OutputFile); err != nil {
		return res, err
	}
	m.RecordRender(len(res.Tasks), time.Since(started))

	fmt.Fprintf(out, "Gantt chart saved to %s\n", cfg.OutputFile)

	res.Summary = report.Summarize(execs, res.Tasks, cfg.Window)
	if cfg.Summary {
		fmt.Fprintln(out, report.Console(res.Summary))
	}

	if err := runSinks(ctx, cfg, res, m); err != nil {
		return res, err
	}

	return res, nil
}

func runSinks(ctx context.Context, cfg config.Config, res *Result, m *metrics.Metrics) error {
	if cfg.ReportFile != "" {
		if err := report.Save(cfg.ReportFile, report.Table(res.Summary)); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		log.Printf("[Run %s] Summary report written to %s", res.RunID, cfg.ReportFile)
	}

	if cfg.ExportDSN != "" {
		if err := exportExecutions(ctx, cfg.ExportDSN, res); err != nil {
			return err
		}
	}

	if cfg.RedisAddr != "" {
		if err := publishRun(ctx, cfg, res); err != nil {
			return err
		}
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		log.Printf("[Run %s] Metrics written to %s", res.RunID, cfg.MetricsFile)
	}

	return nil
}

func exportExecutions(ctx context.Context, dsn string, res *Result) error {
	repo, err := repository.Open(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close export database: %v", err)
		}
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.SaveExecutions(ctx, res.RunID, res.Executions); err != nil {
		return err
	}

	log.Printf("[Run %s] Exported %d executions", res.RunID, len(res.Executions))
	return nil
}

func publishRun(ctx context.Context, cfg config.Config, res *Result) error {
	p, err := queue.NewPublisher(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("failed to close publisher: %v", err)
		}
	}()

	if err := p.Publish(ctx, NewRunSummary(cfg, res)); err != nil {
		return fmt.Errorf("failed to publish run: %w", err)
	}

	log.Printf("[Run %s] Published run summary to %s", res.RunID, cfg.RedisAddr)
	return nil
}

func NewRunSummary(cfg config.Config, res *Result) *queue.RunSummary {
	tasks := make([]queue.TaskSummary, len(res.Summary))
	for i, row := range res.Summary {
		tasks[i] = queue.TaskSummary{
			Name:       row.Task.Name,
			Priority:   row.Task.Priority,
			Color:      row.Task.Hex(),
			Executions: row.Executions,
			TotalMs:    row.TotalMs,
		}
	}

	return &queue.RunSummary{
		ID:         res.RunID,
		LogFile:    cfg.LogFile,
		OutputFile: cfg.OutputFile,
		WindowMs:   timeline.Milliseconds(cfg.Window),
		Executions: len(res.Executions),
		Tasks:      tasks,
		CreatedAt:  time.Now().UTC(),
	}
}
