package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"boxhaul/internal/haul"
	"boxhaul/internal/report"
)

// SQLiteIndex keeps one row per solve and one row per transport cycle.
type SQLiteIndex struct {
	db *sql.DB
}

type RunRow struct {
	ID         string
	Source     string
	Status     string
	GridSize   int
	Boxes      int
	Delivered  int
	Cycles     int
	Actions    int
	Violations int
	Checks     int
	Rejections int
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Batch workers share the handle; sqlite wants a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			grid_size INTEGER NOT NULL,
			boxes INTEGER NOT NULL,
			delivered INTEGER NOT NULL,
			cycles INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			violations INTEGER NOT NULL,
			checks INTEGER NOT NULL,
			rejections INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cycles (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			plan_json TEXT NOT NULL,
			fallback INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			pending_before INTEGER NOT NULL,
			pending_after INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_status ON runs(status);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error { return s.db.Close() }

// RecordReport stores a run and its cycles in one transaction.
func (s *SQLiteIndex) RecordReport(ctx context.Context, r report.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(id,source,status,grid_size,boxes,delivered,cycles,actions,violations,checks,rejections,recorded_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.RunID, r.Source, string(r.Status), r.GridSize, r.Boxes, r.Delivered, len(r.Cycles), r.Actions,
		len(r.Violations), r.Stats.FeasibilityChecks, r.Stats.Rejections, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cycles(run_id,idx,plan_json,fallback,actions,pending_before,pending_after) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range r.Cycles {
		plan, err := json.Marshal(c.Plan)
		if err != nil {
			return err
		}
		fallback := 0
		if c.Fallback {
			fallback = 1
		}
		if _, err := stmt.ExecContext(ctx, r.RunID, c.Index, string(plan), fallback, c.Actions, c.PendingBefore, c.PendingAfter); err != nil {
			return fmt.Errorf("insert cycle %d of %s: %w", c.Index, r.RunID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) Run(ctx context.Context, id string) (RunRow, error) {
	var r RunRow
	row := s.db.QueryRowContext(ctx,
		`SELECT id,source,status,grid_size,boxes,delivered,cycles,actions,violations,checks,rejections,recorded_at
		 FROM runs WHERE id=?`, id)
	err := row.Scan(&r.ID, &r.Source, &r.Status, &r.GridSize, &r.Boxes, &r.Delivered, &r.Cycles,
		&r.Actions, &r.Violations, &r.Checks, &r.Rejections, &r.RecordedAt)
	return r, err
}

func (s *SQLiteIndex) Cycles(ctx context.Context, id string) ([]haul.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx,plan_json,fallback,actions,pending_before,pending_after FROM cycles WHERE run_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []haul.Cycle
	for rows.Next() {
		var (
			c        haul.Cycle
			plan     string
			fallback int
		)
		if err := rows.Scan(&c.Index, &plan, &fallback, &c.Actions, &c.PendingBefore, &c.PendingAfter); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(plan), &c.Plan); err != nil {
			return nil, fmt.Errorf("cycle %d plan: %w", c.Index, err)
		}
		c.Fallback = fallback != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByStatus returns how many indexed runs ended in each status.
func (s *SQLiteIndex) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
