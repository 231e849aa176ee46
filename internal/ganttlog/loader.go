package ganttlog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type loadError struct {
	kind error
	msg  string
}

func (e *loadError) Error() string { return e.msg }
func (e *loadError) Unwrap() error { return e.kind }

func fail(kind error, format string, args ...any) error {
	return &loadError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Load reads the log at path and returns the rows whose Type equals
// recordType, in file order. Paths ending in .zst are zstd-decompressed.
func Load(path, recordType string) ([]LogRecord, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Stats{}, fail(ErrLogNotFound, "log file not found at '%s'", path)
		}
		return nil, Stats{}, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("failed to close log file: %v", closeErr)
		}
	}()

	var src io.Reader = file
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	records, stats, err := Parse(src, recordType)
	if err != nil {
		if errors.Is(err, ErrEmptyLog) {
			return nil, stats, fail(ErrEmptyLog, "log file '%s' is empty", path)
		}
		return nil, stats, err
	}

	return records, stats, nil
}

// Parse reads a log stream. The first line is a free-form description and
// is discarded without being parsed as CSV.
func Parse(r io.Reader, recordType string) ([]LogRecord, Stats, error) {
	var stats Stats

	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fail(ErrEmptyLog, "log is empty")
		}
		return nil, stats, fmt.Errorf("failed to read log header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []LogRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fail(ErrMalformedRecord, "malformed log: %v", err)
		}

		stats.Rows++
		if row[0] != recordType {
			continue
		}

		line, _ := reader.FieldPos(0)
		rec, err := parseRecord(row)
		if err != nil {
			return nil, stats, fail(ErrMalformedRecord, "malformed %s record on line %d: %v", recordType, line+1, err)
		}

		stats.Matched++
		records = append(records, rec)
	}

	if stats.Rows == 0 {
		return nil, stats, fail(ErrEmptyLog, "log is empty")
	}
	if len(records) == 0 {
		return nil, stats, fail(ErrNoRecords, "no '%s' data found in the log file", recordType)
	}

	return records, stats, nil
}

func parseRecord(row []string) (LogRecord, error) {
	if len(row) < fieldCount {
		return LogRecord{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(row))
	}

	priority, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return LogRecord{}, fmt.Errorf("invalid priority %q", row[2])
	}

	var times [4]int64
	for i := range times {
		field := row[3+i]
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return LogRecord{}, fmt.Errorf("invalid timestamp field %q", field)
		}
		times[i] = v
	}

	return LogRecord{
		Type:      row[0],
		TaskName:  row[1],
		Priority:  priority,
		StartSec:  times[0],
		StartNsec: times[1],
		EndSec:    times[2],
		EndNsec:   times[3],
	}, nil
}
