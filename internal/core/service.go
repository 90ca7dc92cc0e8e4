package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/csvaudit/internal/config"
	"github.com/JonMunkholm/csvaudit/internal/csv"
	"github.com/JonMunkholm/csvaudit/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrEmptyInput is returned for a zero-byte input. A header-only file is
	// not empty; it yields an empty report.
	ErrEmptyInput = errors.New("empty input: the file has no header row")

	// ErrRunNotFound is returned by history lookups for an unknown run ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrHistoryDisabled is returned when history is requested but no
	// DATABASE_URL is configured.
	ErrHistoryDisabled = errors.New("run history is not configured")
)

// SaveTimeout bounds how long recording a run may take once the analysis
// itself is done.
var SaveTimeout = 10 * time.Second

// RunStore records finished analyses. Implementations live in
// internal/store.
type RunStore interface {
	SaveRun(ctx context.Context, report *Report) error
}

// Service runs the parse → build → analyze pipeline and records results.
type Service struct {
	keys    Keys
	store   RunStore
	limiter *Limiter
	now     func() time.Time
}

// NewService creates a Service from configuration. store may be nil, in
// which case runs are not recorded.
func NewService(cfg *config.Config, store RunStore) *Service {
	keys := Keys{Category: cfg.Analysis.CategoryKey, Amount: cfg.Analysis.AmountKey}
	if keys.Category == "" {
		keys.Category = DefaultCategoryKey
	}
	if keys.Amount == "" {
		keys.Amount = DefaultAmountKey
	}

	return &Service{
		keys:    keys,
		store:   store,
		limiter: NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:     time.Now,
	}
}

// Keys returns the configured category and amount columns.
func (s *Service) Keys() Keys {
	return s.keys
}

// ResolveKeys fills blank fields of override with the configured keys.
func (s *Service) ResolveKeys(override Keys) Keys {
	keys := s.keys
	if k := strings.TrimSpace(override.Category); k != "" {
		keys.Category = k
	}
	if k := strings.TrimSpace(override.Amount); k != "" {
		keys.Amount = k
	}
	return keys
}

// Analyze reads one CSV document from r and runs every analyzer over it.
// source names the input in logs and history. Blank fields of keys fall
// back to the configured columns.
//
// A parse failure is returned as a *csv.ParseError; nothing is recorded.
// A failure to record the run is logged and does not fail the analysis.
func (s *Service) Analyze(ctx context.Context, source string, r io.Reader, keys Keys) (*Report, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	keys = s.ResolveKeys(keys)
	runID := uuid.New()
	logger := logging.WithFields(ctx, "run_id", runID.String(), "source", source)
	start := s.now()

	counter := csv.NewCountingReader(r)
	header, records, err := ReadRecords(counter)
	if err != nil {
		logger.Warn("analysis failed", "error", err, "bytes", counter.N)
		return nil, err
	}
	if counter.N == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("records built", "records", len(records), "columns", len(header), "bytes", counter.N)

	report := Analyze(header, records, keys)
	report.RunID = runID
	report.Source = source
	report.CreatedAt = start.UTC()
	report.Origin = OriginFromContext(ctx)
	report.ProcessingTimeMs = s.now().Sub(start).Milliseconds()

	logger.Info("analysis completed",
		"records", report.RecordCount,
		"duplicates", len(report.Duplicates),
		"categories", report.Categories.Len(),
		"invalid_amounts", len(report.InvalidAmounts),
		"duration_ms", report.ProcessingTimeMs,
	)

	s.save(ctx, logger, report)
	return report, nil
}

func (s *Service) save(ctx context.Context, logger *slog.Logger, report *Report) {
	if s.store == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
	defer cancel()

	if err := s.store.SaveRun(saveCtx, report); err != nil {
		logger.Error("failed to record run", "error", fmt.Errorf("save run: %w", err))
		return
	}
	logger.Debug("run recorded")
}

// LimiterStatus returns the current analysis slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForAnalyses blocks until in-flight analyses finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForAnalyses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
