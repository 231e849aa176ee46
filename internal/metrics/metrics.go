// Package metrics provides Prometheus metrics describing a chart run.
// Each run owns its registry; the result is written in the node exporter
// textfile format rather than served.
package metrics

import (
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/ganttlog"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	registry *prometheus.Registry

	RowsRead          prometheus.Counter
	RecordsMatched    prometheus.Counter
	ExecutionsWindow  prometheus.Counter
	TasksRendered     prometheus.Gauge
	ExecutionDuration *prometheus.HistogramVec
	RenderDuration    prometheus.Histogram
	LastRunTimestamp  prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "gantt_log_rows_total",
			Help: "Total number of data rows read from the log",
		}),
		RecordsMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "gantt_log_records_matched_total",
			Help: "Total number of rows carrying the Gantt record marker",
		}),
		ExecutionsWindow: factory.NewCounter(prometheus.CounterOpts{
			Name: "gantt_executions_windowed_total",
			Help: "Total number of executions inside the display window",
		}),
		TasksRendered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gantt_tasks_rendered",
			Help: "Number of distinct tasks drawn on the chart",
		}),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gantt_execution_duration_milliseconds",
				Help:    "Execution interval duration in milliseconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"task"},
		),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gantt_render_duration_seconds",
			Help:    "Time spent drawing and encoding the chart",
			Buckets: prometheus.DefBuckets,
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gantt_last_run_timestamp_seconds",
			Help: "Unix time of the last successful chart run",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordLoad(stats ganttlog.Stats) {
	m.RowsRead.Add(float64(stats.Rows))
	m.RecordsMatched.Add(float64(stats.Matched))
}

func (m *Metrics) RecordWindow(execs []timeline.Execution) {
	m.ExecutionsWindow.Add(float64(len(execs)))
	for _, e := range execs {
		m.ExecutionDuration.WithLabelValues(e.TaskName).Observe(e.DurationMs)
	}
}

func (m *Metrics) RecordRender(tasks int, duration time.Duration) {
	m.TasksRendered.Set(float64(tasks))
	m.RenderDuration.Observe(duration.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
