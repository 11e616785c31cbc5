package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PillarReport/internal/model"
)

// SQLiteRecorder persists the run journal to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			aborted     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(run_id),
			position    INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			path        TEXT,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_results_run ON ticker_results(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run and its per-ticker results in one transaction.
func (r *SQLiteRecorder) RecordRun(s *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, succeeded, failed, aborted)
		VALUES (?,?,?,?,?,?)`,
		s.RunID, s.StartedAt.UnixMilli(), s.FinishedAt.UnixMilli(),
		len(s.Succeeded()), len(s.FailedResults()), s.Aborted,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, res := range s.Results {
		var errText string
		if res.Err != nil {
			errText = res.Err.Error()
		}
		if _, err := tx.Exec(`INSERT INTO ticker_results
			(run_id, position, ticker, path, error, duration_ms)
			VALUES (?,?,?,?,?,?)`,
			s.RunID, i, res.Ticker, res.Path, errText, res.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert ticker result: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, with their tickers.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, started_at, finished_at, succeeded, failed, aborted
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []RunRecord
	for rows.Next() {
		var (
			rec               RunRecord
			started, finished int64
		)
		if err := rows.Scan(&rec.RunID, &started, &finished, &rec.Succeeded, &rec.Failed, &rec.Aborted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		tickers, err := r.tickerResults(runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Tickers = tickers
	}
	return runs, nil
}

func (r *SQLiteRecorder) tickerResults(runID string) ([]TickerRecord, error) {
	rows, err := r.db.Query(`SELECT ticker, path, error, duration_ms
		FROM ticker_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticker results: %w", err)
	}
	defer rows.Close()

	var out []TickerRecord
	for rows.Next() {
		var (
			t  TickerRecord
			ms int64
		)
		if err := rows.Scan(&t.Ticker, &t.Path, &t.Error, &ms); err != nil {
			return nil, fmt.Errorf("scan ticker result: %w", err)
		}
		t.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
