// Package ganttlog reads the scheduler's Gantt event log.
// The log starts with one descriptive line, followed by CSV rows laid out as
// Type, TaskName, Priority, StartSec, StartNsec, EndSec, EndNsec.
package ganttlog

import "errors"

const (
	DefaultPath       = "gantt_log.csv"
	DefaultRecordType = "GANTT"

	fieldCount = 7
)

var (
	ErrLogNotFound     = errors.New("log file not found")
	ErrEmptyLog        = errors.New("log file is empty")
	ErrNoRecords       = errors.New("no matching records in log file")
	ErrMalformedRecord = errors.New("malformed log record")
)

type LogRecord struct {
	Type      string
	TaskName  string
	Priority  int
	StartSec  int64
	StartNsec int64
	EndSec    int64
	EndNsec   int64
}

// Stats counts rows seen while loading.
type Stats struct {
	Rows    int
	Matched int
}
