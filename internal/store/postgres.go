package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/csvaudit/internal/config"
	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	id              UUID PRIMARY KEY,
	source          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	category_key    TEXT NOT NULL,
	amount_key      TEXT NOT NULL,
	record_count    INTEGER NOT NULL,
	duplicate_count INTEGER NOT NULL,
	category_count  INTEGER NOT NULL,
	invalid_count   INTEGER NOT NULL,
	ip_address      TEXT NOT NULL DEFAULT '',
	user_agent      TEXT NOT NULL DEFAULT '',
	processing_ms   BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_runs_created_at_idx ON audit_runs (created_at DESC);

CREATE TABLE IF NOT EXISTS audit_run_totals (
	run_id      UUID NOT NULL REFERENCES audit_runs (id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	category    TEXT NOT NULL,
	occurrences INTEGER NOT NULL,
	total       NUMERIC,
	is_integer  BOOLEAN NOT NULL DEFAULT TRUE,
	PRIMARY KEY (run_id, position)
);
`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool sized from cfg, verifies it, and ensures
// the schema exists.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "backend", "postgres", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// SaveRun inserts the run and its category totals in one transaction.
func (p *Postgres) SaveRun(ctx context.Context, report *core.Report) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	runID := pgtype.UUID{Bytes: report.RunID, Valid: true}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_runs (id, source, created_at, category_key, amount_key,
			record_count, duplicate_count, category_count, invalid_count,
			ip_address, user_agent, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		runID,
		report.Source,
		pgtype.Timestamptz{Time: report.CreatedAt, Valid: true},
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

	rows := flattenTotals(report)
	if len(rows) > 0 {
		copyRows := make([][]any, 0, len(rows))
		for _, row := range rows {
			total, err := toNumeric(row)
			if err != nil {
				return fmt.Errorf("category %q: %w", row.category, err)
			}
			copyRows = append(copyRows, []any{runID, row.position, row.category, row.occurrences, total, row.isInteger})
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"audit_run_totals"},
			[]string{"run_id", "position", "category", "occurrences", "total", "is_integer"},
			pgx.CopyFromRows(copyRows),
		)
		if err != nil {
			return fmt.Errorf("insert totals: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toNumeric(row totalRow) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if !row.hasTotal {
		return n, nil
	}
	if err := n.Scan(row.total); err != nil {
		return n, fmt.Errorf("convert total %q: %w", row.total, err)
	}
	return n, nil
}

// ListRuns returns the newest runs first.
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, source, created_at, category_key, amount_key, record_count,
			duplicate_count, category_count, invalid_count, ip_address,
			user_agent, processing_ms
		FROM audit_runs
		ORDER BY created_at DESC
		LIMIT $1`, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			id        pgtype.UUID
			createdAt pgtype.Timestamptz
			run       RunSummary
		)
		if err := rows.Scan(&id, &run.Source, &createdAt, &run.CategoryKey, &run.AmountKey,
			&run.RecordCount, &run.DuplicateCount, &run.CategoryCount, &run.InvalidCount,
			&run.IPAddress, &run.UserAgent, &run.ProcessingTimeMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.ID = uuid.UUID(id.Bytes)
		run.CreatedAt = createdAt.Time.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunTotals returns the stored categories of one run.
func (p *Postgres) RunTotals(ctx context.Context, id uuid.UUID) ([]CategoryTotal, error) {
	runID := pgtype.UUID{Bytes: id, Valid: true}

	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT true FROM audit_runs WHERE id = $1`, runID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT category, occurrences, total::text, is_integer
		FROM audit_run_totals
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}
	defer rows.Close()

	totals := []CategoryTotal{}
	for rows.Next() {
		var (
			ct        CategoryTotal
			total     pgtype.Text
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
func (p *Postgres) ResetRuns(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `TRUNCATE audit_runs CASCADE`); err != nil {
		return fmt.Errorf("reset runs: %w", err)
	}
	return nil
}

// ResetTotals removes stored category totals and keeps the run list.
func (p *Postgres) ResetTotals(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `TRUNCATE audit_run_totals`); err != nil {
		return fmt.Errorf("reset totals: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
