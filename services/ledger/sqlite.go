package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one crawl and extraction of a shop
type Run struct {
	ID         string
	Shop       string
	StartedAt  time.Time
	FinishedAt time.Time
	Hits       int
	Items      int
	Cost       float64
	Err        string
}

// ShopSummary aggregates all runs of a shop
type ShopSummary struct {
	Shop      string
	Runs      int
	Items     int
	Cost      float64
	LastRunAt time.Time
}

// CostPerThousand returns the USD spent per 1000 extracted items
func (s ShopSummary) CostPerThousand() (float64, bool) {
	return CostPerThousand(s.Cost, s.Items)
}

// CostPerThousand returns cost/items*1000, or false when there are no items
func CostPerThousand(cost float64, items int) (float64, bool) {
	if items <= 0 {
		return 0, false
	}
	return cost / float64(items) * 1000, true
}

// timeLayout is fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger stores run history in SQLite
type Ledger struct {
	conn *sql.DB
}

// Open opens (or creates) the ledger at path. ":memory:" keeps it in memory.
func Open(path string) (*Ledger, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; also keeps ":memory:" on one connection
	conn.SetMaxOpenConns(1)

	l := &Ledger{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// Close closes the database connection
func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			shop TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			hits INTEGER NOT NULL DEFAULT 0,
			items INTEGER NOT NULL DEFAULT 0,
			cost REAL NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_shop ON runs(shop)`,
	}
	for _, m := range migrations {
		if _, err := l.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores run, assigning an id when it has none, and returns the id
func (l *Ledger) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO runs (id, shop, started_at, finished_at, hits, items, cost, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Shop, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout), run.Hits, run.Items, run.Cost, run.Err,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// Runs returns the runs of a shop, newest first
func (l *Ledger) Runs(ctx context.Context, shop string) ([]Run, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT id, shop, started_at, finished_at, hits, items, cost, error
		 FROM runs WHERE shop = ? ORDER BY finished_at DESC, id`, shop)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Shop, &started, &finished, &r.Hits, &r.Items, &r.Cost, &r.Err); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summary aggregates successful and failed runs per shop, ordered by shop
func (l *Ledger) Summary(ctx context.Context) ([]ShopSummary, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT shop, COUNT(*), COALESCE(SUM(items), 0), COALESCE(SUM(cost), 0), MAX(finished_at)
		 FROM runs GROUP BY shop ORDER BY shop`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var summaries []ShopSummary
	for rows.Next() {
		var s ShopSummary
		var last string
		if err := rows.Scan(&s.Shop, &s.Runs, &s.Items, &s.Cost, &last); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.LastRunAt = parseTime(last)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
