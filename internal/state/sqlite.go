package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS solve_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			rows INTEGER NOT NULL,
			cols INTEGER NOT NULL,
			fingerprint TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			nodes_visited INTEGER NOT NULL DEFAULT 0,
			path_length INTEGER NOT NULL DEFAULT 0,
			time_taken_ms REAL NOT NULL DEFAULT 0,
			started_ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS solve_runs_fingerprint ON solve_runs(fingerprint);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RecordSolveRun stores run and returns its row id. An empty RunID is
// filled with a fresh uuid.
func (s *SQLiteStore) RecordSolveRun(ctx context.Context, run SolveRun) (int64, error) {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	started := run.StartTS
	if started.IsZero() {
		started = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO solve_runs(run_id, session_id, algorithm, rows, cols, fingerprint, outcome, nodes_visited, path_length, time_taken_ms, started_ts)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`,
		runID,
		run.SessionID,
		strings.TrimSpace(run.Algorithm),
		run.Rows,
		run.Cols,
		run.Fingerprint,
		strings.TrimSpace(run.Outcome),
		max(0, run.NodesVisited),
		max(0, run.PathLength),
		run.TimeTakenMS,
		started.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("record solve run: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]SolveRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, session_id, algorithm, rows, cols, fingerprint, outcome, nodes_visited, path_length, time_taken_ms, started_ts
		FROM solve_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SolveRun
	for rows.Next() {
		var (
			run        SolveRun
			startedRaw string
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.SessionID, &run.Algorithm, &run.Rows, &run.Cols,
			&run.Fingerprint, &run.Outcome, &run.NodesVisited, &run.PathLength, &run.TimeTakenMS, &startedRaw,
		); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, startedRaw); err == nil {
			run.StartTS = t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	out := Summary{BestPath: map[string]int{}}
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as runs,
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),0) as found,
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),0) as unreachable,
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),0) as failed
		FROM solve_runs
	`, OutcomeFound, OutcomeUnreachable, OutcomeFailed)
	if err := row.Scan(&out.Runs, &out.Found, &out.Unreachable, &out.Failed); err != nil {
		return Summary{}, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT algorithm, MIN(path_length)
		FROM solve_runs
		WHERE outcome = ? AND path_length > 0
		GROUP BY algorithm
	`, OutcomeFound)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			algo string
			best int
		)
		if err := rows.Scan(&algo, &best); err != nil {
			return Summary{}, err
		}
		out.BestPath[algo] = best
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
