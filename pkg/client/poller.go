// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval matches the dashboard refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Poller runs a task at a fixed interval until its context is cancelled.
// It replaces ad-hoc UI polling timers with one cancellable loop whose
// lifetime is tied to the session: cancel the context on logout and the
// polling stops.
type Poller struct {
	// Interval between runs; [DefaultPollInterval] when zero.
	Interval time.Duration

	// Task is the periodic work, typically a caller-scoped refetch through
	// the [Client]. Errors are logged and the loop continues.
	Task func(ctx context.Context) error

	// Log receives task failures. Nil falls back to [slog.Default].
	Log *slog.Logger
}

// Run blocks, invoking Task every Interval until ctx is cancelled. The first
// run happens after one interval, not immediately; callers wanting an eager
// first fetch do it before starting the loop.
func (poller *Poller) Run(ctx context.Context) {
	interval := poller.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := poller.Log
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := poller.Task(ctx); err != nil {
				logger.Warn("poll_task_failed", slog.Any("error", err))
			}
		}
	}
}
