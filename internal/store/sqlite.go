package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	id              TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	category_key    TEXT NOT NULL,
	amount_key      TEXT NOT NULL,
	record_count    INTEGER NOT NULL,
	duplicate_count INTEGER NOT NULL,
	category_count  INTEGER NOT NULL,
	invalid_count   INTEGER NOT NULL,
	ip_address      TEXT NOT NULL DEFAULT '',
	user_agent      TEXT NOT NULL DEFAULT '',
	processing_ms   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_runs_created_at_idx ON audit_runs (created_at DESC);

CREATE TABLE IF NOT EXISTS audit_run_totals (
	run_id      TEXT NOT NULL REFERENCES audit_runs (id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	category    TEXT NOT NULL,
	occurrences INTEGER NOT NULL,
	total       TEXT,
	is_integer  INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (run_id, position)
);
`

// SQLite is a Store backed by an embedded SQLite database file.
// Totals are stored as decimal text so integer sums keep every digit.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn, which is a
// file path or a file: URI.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if dsn == "" {
		return nil, errors.New("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	slog.Info("connected to database", "backend", "sqlite", "path", strings.SplitN(dsn, "?", 2)[0])
	return &SQLite{db: db}, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// SaveRun inserts the run and its category totals in one transaction.
func (s *SQLite) SaveRun(ctx context.Context, report *core.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	runID := report.RunID.String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_runs (id, source, created_at, category_key, amount_key,
			record_count, duplicate_count, category_count, invalid_count,
			ip_address, user_agent, processing_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		report.Source,
		report.CreatedAt.UnixNano(),
		report.Keys.Category,
		report.Keys.Amount,
		report.RecordCount,
		len(report.Duplicates),
		report.Categories.Len(),
		len(report.InvalidAmounts),
		report.Origin.IPAddress,
		report.Origin.UserAgent,
		report.ProcessingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_run_totals (run_id, position, category, occurrences, total, is_integer)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare totals: %w", err)
	}
	defer stmt.Close()

	for _, row := range flattenTotals(report) {
		total := sql.NullString{String: row.total, Valid: row.hasTotal}
		if _, err := stmt.ExecContext(ctx, runID, row.position, row.category, row.occurrences, total, row.isInteger); err != nil {
			return fmt.Errorf("insert total %q: %w", row.category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, created_at, category_key, amount_key, record_count,
			duplicate_count, category_count, invalid_count, ip_address,
			user_agent, processing_ms
		FROM audit_runs
		ORDER BY created_at DESC
		LIMIT ?`, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			id        string
			createdAt int64
			run       RunSummary
		)
		if err := rows.Scan(&id, &run.Source, &createdAt, &run.CategoryKey, &run.AmountKey,
			&run.RecordCount, &run.DuplicateCount, &run.CategoryCount, &run.InvalidCount,
			&run.IPAddress, &run.UserAgent, &run.ProcessingTimeMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunTotals returns the stored categories of one run.
func (s *SQLite) RunTotals(ctx context.Context, id uuid.UUID) ([]CategoryTotal, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM audit_runs WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, occurrences, total, is_integer
		FROM audit_run_totals
		WHERE run_id = ?
		ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}
	defer rows.Close()

	totals := []CategoryTotal{}
	for rows.Next() {
		var (
			ct        CategoryTotal
			total     sql.NullString
			isInteger bool
		)
		if err := rows.Scan(&ct.Category, &ct.Occurrences, &total, &isInteger); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		if total.Valid {
			ct.Total = numberFromDecimal(total.String, isInteger)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}
	return totals, nil
}

// ResetRuns removes every run. Totals go with them.
func (s *SQLite) ResetRuns(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_runs`); err != nil {
		return fmt.Errorf("reset runs: %w", err)
	}
	return nil
}

// ResetTotals removes stored category totals and keeps the run list.
func (s *SQLite) ResetTotals(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_run_totals`); err != nil {
		return fmt.Errorf("reset totals: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// numberFromDecimal restores the ".0" a floating total prints with.
func numberFromDecimal(s string, isInteger bool) json.Number {
	if !isInteger && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}
