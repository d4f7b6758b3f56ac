package worker

import (
	"context"
	"time"

	"github.com/dorianvale/praxis/internal/jobs"
)

// StartScheduler enqueues the overdue invoice run once per day at UTC
// midnight, until the context is cancelled. Duplicate enqueues from multiple
// instances are harmless: the run lock keeps only one pass active.
func (w *Worker) StartScheduler(ctx context.Context) error {
	for {
		next := nextUTCMidnight(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := jobs.EnqueueReconcileOverdue(ctx, w.queue, next); err != nil {
				w.logger.Error("failed to enqueue overdue run", "error", err)
			} else {
				w.logger.Info("enqueued nightly overdue run", "scheduled_at", next)
			}
		}
	}
}

func nextUTCMidnight(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
