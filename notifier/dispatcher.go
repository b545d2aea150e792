package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Dispatcher triggers notification cycles on a fixed interval. Cycles never
// overlap: a new tick waits for the previous cycle to finish.
type Dispatcher struct {
	scheduler *Scheduler
	interval  time.Duration
}

// NewDispatcher creates a dispatcher running one cycle every interval.
func NewDispatcher(scheduler *Scheduler, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Dispatcher{
		scheduler: scheduler,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled, running cycles periodically. The first
// cycle runs one interval after start, not immediately, so a restart loop
// cannot hammer users.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("notification dispatcher started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

// RunOnce triggers a single cycle immediately, used by the `notify` command.
func (d *Dispatcher) RunOnce(ctx context.Context) ([]Outcome, error) {
	start := time.Now()
	outcomes, err := d.scheduler.RunCycle(ctx)
	observeCycle(start)
	return outcomes, err
}

func (d *Dispatcher) runOnce(ctx context.Context) {
	// Correlation ID ties per-user log lines to their cycle summary.
	cycleID := uuid.NewString()

	outcomes, err := d.RunOnce(ctx)
	if err != nil {
		slog.Error("notification cycle aborted", "cycle", cycleID, "error", err)
	}

	var sent, skipped, failed int
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusSent:
			sent++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	slog.Info("notification cycle finished",
		"cycle", cycleID,
		"users", len(outcomes),
		"sent", sent,
		"skipped", skipped,
		"failed", failed,
	)
}
