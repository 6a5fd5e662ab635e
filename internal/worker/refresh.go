// Package worker runs the background cache-refresh loop.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refresher sweeps the cache and refreshes stale entries.
type Refresher interface {
	RefreshStale(ctx context.Context) (int, error)
}

// RefreshWorker periodically refreshes stale company data.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "interval", w.interval)

	// Sweep immediately on startup
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RefreshWorker) sweep(ctx context.Context) {
	n, err := w.refresher.RefreshStale(ctx)
	if err != nil {
		slog.Error("RefreshWorker: sweep failed", "error", err)
		return
	}
	slog.Info("RefreshWorker: sweep completed", "refreshed", n)
}
