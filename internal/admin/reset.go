// Package admin provides administrative operations on the run history.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

// ResetTimeout is the maximum duration for history reset operations.
const ResetTimeout = 30 * time.Second

// HistoryResetter is the part of the run store a reset needs.
type HistoryResetter interface {
	ResetTotals(ctx context.Context) error
	ResetRuns(ctx context.Context) error
}

// Resetter clears recorded runs.
type Resetter struct {
	Store   HistoryResetter
	Timeout time.Duration
}

type resetFn struct {
	name string
	fn   func(ctx context.Context) error
}

// ResetAll removes every stored total and run.
// This is a destructive operation - use with caution.
func (r *Resetter) ResetAll(ctx context.Context) error {
	if r.Store == nil {
		return core.ErrHistoryDisabled
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = ResetTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.runResets(ctx, []resetFn{
		{"totals", r.Store.ResetTotals},
		{"runs", r.Store.ResetRuns},
	})
}

func (r *Resetter) runResets(ctx context.Context, resets []resetFn) error {
	for _, reset := range resets {
		if err := reset.fn(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", reset.name, err)
		}
		slog.Info("history reset", "table", reset.name)
	}
	return nil
}
