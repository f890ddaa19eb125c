// Package history persists completed runs in SQLite so past audits can be
// listed and re-rendered.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/pagewatch/pagewatch/internal/history/migrations"
	"github.com/pagewatch/pagewatch/internal/logging"
	"github.com/pagewatch/pagewatch/internal/run"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store is the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and applies
// migrations. SQLite does not handle concurrent writers well, so the
// connection pool is pinned to a single connection.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Component("history").Debug("database_opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunSummary is one row of the run list.
type RunSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Passed      bool      `json:"passed"`
	PageCount   int       `json:"pageCount"`
	FailedPages int       `json:"failedPages"`
}

// RecordRun stores a completed run, full result included.
func (s *Store) RecordRun(r *run.Run) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", r.ID, err)
	}

	failed := 0
	for _, p := range r.Pages {
		if !p.Passed {
			failed++
		}
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, started_at, finished_at, passed, page_count, failed_page_count, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(r.Passed),
		len(r.Pages),
		failed,
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, passed, page_count, failed_page_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum                   RunSummary
			startedAt, finishedAt string
			passed                int
		)
		if err := rows.Scan(&sum.ID, &startedAt, &finishedAt, &passed, &sum.PageCount, &sum.FailedPages); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		sum.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		sum.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		sum.Passed = passed != 0
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// GetRun returns the full stored result for a run ID.
func (s *Store) GetRun(id string) (*run.Run, error) {
	var blob string
	err := s.db.QueryRow(`SELECT result FROM runs WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var r run.Run
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &r, nil
}

// LatestRun returns the most recent run, or ErrRunNotFound when the history
// is empty.
func (s *Store) LatestRun() (*run.Run, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return s.GetRun(id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
