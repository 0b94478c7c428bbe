package core

// scheduler.go runs background maintenance for the session store.
//
// Idle sessions hold a full merged table in memory, so the sweeper drops
// sessions that have not been used for the configured TTL. The sweeper is
// long-running and stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often idle sessions are checked for.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper periodically removes expired sessions from the store.
// It blocks until ctx is cancelled; run it in its own goroutine.
func StartSessionSweeper(ctx context.Context, store *SessionStore, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started",
		"interval", interval.String(),
		"ttl", store.ttl.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			runSweep(store)
		}
	}
}

// runSweep performs one sweep and logs what it removed.
func runSweep(store *SessionStore) {
	start := time.Now()
	removed := store.Sweep()
	if removed == 0 {
		slog.Debug("session sweep completed", "live", store.Len())
		return
	}
	slog.Info("expired sessions removed",
		"removed", removed,
		"live", store.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
