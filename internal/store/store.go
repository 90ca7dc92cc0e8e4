// Package store records analysis runs so they can be listed and compared
// later. Two backends share one schema: PostgreSQL through pgx, and an
// embedded SQLite file through modernc.org/sqlite.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/csvaudit/internal/config"
	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/google/uuid"
)

// DefaultListLimit caps ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 20

// RunSummary is one row of run history.
type RunSummary struct {
	ID               uuid.UUID `json:"runId"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"createdAt"`
	CategoryKey      string    `json:"categoryKey"`
	AmountKey        string    `json:"amountKey"`
	RecordCount      int       `json:"recordCount"`
	DuplicateCount   int       `json:"duplicateCount"`
	CategoryCount    int       `json:"categoryCount"`
	InvalidCount     int       `json:"invalidCount"`
	IPAddress        string    `json:"ipAddress,omitempty"`
	UserAgent        string    `json:"userAgent,omitempty"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
}

// CategoryTotal is a category's stored count and amount total. Total is
// empty when the run stored no total for the category.
type CategoryTotal struct {
	Category    string      `json:"category"`
	Occurrences int         `json:"occurrences"`
	Total       json.Number `json:"total,omitempty"`
}

// Store is the run history.
type Store interface {
	core.RunStore

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// RunTotals returns a run's categories in first-seen order.
	// Unknown IDs return core.ErrRunNotFound.
	RunTotals(ctx context.Context, id uuid.UUID) ([]CategoryTotal, error)

	ResetRuns(ctx context.Context) error
	ResetTotals(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.URL and creates the schema if
// needed. It returns nil and no error when history is disabled.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch backend, dsn := Backend(cfg.URL); backend {
	case "postgres":
		pg, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		lite, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported database URL scheme in %q", redact(cfg.URL))
	}
}

// Backend names the driver for a database URL and returns the DSN that
// driver expects.
func Backend(url string) (backend, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://")
	case strings.HasPrefix(url, "file:"):
		return "sqlite", url
	default:
		return "", ""
	}
}

// redact drops credentials from a URL before it is logged or returned.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// totalRow is one category of a report, flattened for insertion.
type totalRow struct {
	position    int
	category    string
	occurrences int
	total       string
	hasTotal    bool
	isInteger   bool
}

// flattenTotals joins a report's counts and totals on category. Every
// category with a total also has a count, so counts drive the order.
func flattenTotals(report *core.Report) []totalRow {
	rows := make([]totalRow, 0, report.Categories.Len())
	for i, category := range report.Categories.Keys() {
		n, _ := report.Categories.Get(category)
		row := totalRow{position: i, category: category, occurrences: n}
		if t, ok := report.Totals.Get(category); ok {
			row.total = t.Decimal()
			row.hasTotal = true
			row.isInteger = t.IsInteger()
		}
		rows = append(rows, row)
	}
	return rows
}
