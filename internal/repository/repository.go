// Package repository exports chart executions to a SQL database.
// Postgres URLs use lib/pq; any other DSN is treated as a SQLite file.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/timeline"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

type ExecutionRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveExecutions(ctx context.Context, runID string, execs []timeline.Execution) error
	CountExecutions(ctx context.Context, runID string) (int, error)
	Close() error
}

type SQLRepository struct {
	db     *sql.DB
	driver string
}

var placeholder = regexp.MustCompile(`\$\d+`)

func driverFor(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return driverSQLite, strings.TrimPrefix(dsn, "sqlite://")
	default:
		return driverSQLite, dsn
	}
}

func Open(dsn string) (*SQLRepository, error) {
	driver, source := driverFor(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if driver == driverPostgres {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &SQLRepository{db: db, driver: driver}, nil
}

// rebind rewrites $N placeholders for drivers that only accept ?.
func (r *SQLRepository) rebind(query string) string {
	if r.driver == driverPostgres {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

func (r *SQLRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS gantt_executions (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			task_name TEXT NOT NULL,
			priority INTEGER NOT NULL,
			start_ms DOUBLE PRECISION NOT NULL,
			end_ms DOUBLE PRECISION NOT NULL,
			duration_ms DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gantt_executions_task ON gantt_executions (task_name)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// SaveExecutions inserts all executions of a run in a single transaction.
func (r *SQLRepository) SaveExecutions(ctx context.Context, runID string, execs []timeline.Execution) error {
	query := r.rebind(`
		INSERT INTO gantt_executions (
			run_id, seq, task_name, priority, start_ms, end_ms, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, e := range execs {
		_, err := tx.ExecContext(ctx, query, runID, i, e.TaskName, e.Priority, e.StartMs, e.EndMs, e.DurationMs)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("failed to roll back execution export: %v", rbErr)
			}
			return fmt.Errorf("failed to insert execution %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit executions: %w", err)
	}

	return nil
}

func (r *SQLRepository) CountExecutions(ctx context.Context, runID string) (int, error) {
	query := r.rebind(`SELECT COUNT(*) FROM gantt_executions WHERE run_id = $1`)

	var count int
	if err := r.db.QueryRowContext(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count executions: %w", err)
	}

	return count, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}
