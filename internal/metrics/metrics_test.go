package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/ganttlog"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLoad(t *testing.T) {
	m := New()

	m.RecordLoad(ganttlog.Stats{Rows: 10, Matched: 7})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RecordsMatched))
}

func TestRecordWindow(t *testing.T) {
	m := New()

	m.RecordWindow([]timeline.Execution{
		{TaskName: "Audio", DurationMs: 2},
		{TaskName: "Audio", DurationMs: 3},
		{TaskName: "FFT", DurationMs: 40},
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ExecutionsWindow))

	audio := getHistogramMetric(t, m.ExecutionDuration, "Audio")
	assert.Equal(t, uint64(2), audio.Histogram.GetSampleCount())
	assert.Equal(t, 5.0, audio.Histogram.GetSampleSum())

	fft := getHistogramMetric(t, m.ExecutionDuration, "FFT")
	assert.Equal(t, uint64(1), fft.Histogram.GetSampleCount())
}

func TestRecordRender(t *testing.T) {
	m := New()

	m.RecordRender(4, 250*time.Millisecond)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.TasksRendered))
	assert.Greater(t, testutil.ToFloat64(m.LastRunTimestamp), 0.0)

	metric := &dto.Metric{}
	require.NoError(t, m.RenderDuration.Write(metric))
	assert.Equal(t, 0.25, metric.Histogram.GetSampleSum())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.RecordLoad(ganttlog.Stats{Rows: 1, Matched: 1})

	assert.Equal(t, 0.0, testutil.ToFloat64(b.RowsRead))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordLoad(ganttlog.Stats{Rows: 3, Matched: 2})
	m.RecordWindow([]timeline.Execution{{TaskName: "Speed", DurationMs: 1.5}})
	m.RecordRender(1, time.Second)

	path := filepath.Join(t.TempDir(), "gantt.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "gantt_log_rows_total 3")
	assert.Contains(t, string(content), "gantt_log_records_matched_total 2")
	assert.Contains(t, string(content), `gantt_execution_duration_milliseconds_count{task="Speed"} 1`)
	assert.Contains(t, string(content), "gantt_tasks_rendered 1")
}

func getHistogramMetric(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) *dto.Metric {
	metric := &dto.Metric{}
	observer, err := histogram.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	h := observer.(prometheus.Histogram)
	err = h.Write(metric)
	require.NoError(t, err)
	return metric
}
