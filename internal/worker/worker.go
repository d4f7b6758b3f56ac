// Package worker polls the job queue and dispatches background jobs: the
// nightly overdue invoice run and deferred notification emails.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dorianvale/praxis/internal/email"
	"github.com/dorianvale/praxis/internal/jobs"
	"github.com/dorianvale/praxis/internal/reconcile"
	"github.com/dorianvale/praxis/internal/telemetry"
)

const jobTimeout = 2 * time.Minute

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// PollInterval is how often to check for new jobs
	PollInterval time.Duration

	// MaxConcurrency is the maximum number of jobs to process concurrently
	MaxConcurrency int

	// Queue name to process
	Queue string
}

// Worker processes background jobs
type Worker struct {
	config       Config
	queue        jobs.Queue
	emailService *email.Service
	reconciler   *reconcile.Reconciler
	logger       *slog.Logger
}

// NewWorker creates a new background job worker. emailService may be nil when
// no provider is configured; email jobs then fail and retry until one is.
func NewWorker(
	queue jobs.Queue,
	emailService *email.Service,
	reconciler *reconcile.Reconciler,
	config Config,
	logger *slog.Logger,
) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}
	if config.Queue == "" {
		config.Queue = jobs.QueueDefault
	}

	return &Worker{
		config:       config,
		queue:        queue,
		emailService: emailService,
		reconciler:   reconciler,
		logger:       logger,
	}
}

// Start begins processing jobs until the context is cancelled
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"queue", w.config.Queue,
		"poll_interval", w.config.PollInterval,
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Semaphore for concurrency control
	sem := make(chan struct{}, w.config.MaxConcurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			return ctx.Err()

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				go func() {
					defer func() { <-sem }()
					w.claimAndProcess(ctx)
				}()
			default:
				// At max concurrency, skip this poll
			}
		}
	}
}

// claimAndProcess claims and processes a single job
func (w *Worker) claimAndProcess(ctx context.Context) {
	job, err := w.queue.Claim(ctx, w.config.Queue, w.config.WorkerID)
	if err != nil {
		w.logger.Error("failed to claim job", "error", err)
		return
	}
	if job == nil {
		return
	}

	w.logger.Info("processing job",
		"job_id", job.ID,
		"job_type", job.Type,
		"retry_count", job.RetryCount,
	)

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Error("job failed",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err,
		)
		telemetry.CaptureError(err, map[string]interface{}{
			"job_id":   job.ID.String(),
			"job_type": job.Type,
		})
		if failErr := w.queue.Fail(ctx, job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to record job failure", "job_id", job.ID, "error", failErr)
		}
		return
	}

	w.logger.Info("job completed", "job_id", job.ID, "job_type", job.Type)
	if err := w.queue.Complete(ctx, job.ID); err != nil {
		w.logger.Error("failed to mark job complete", "job_id", job.ID, "error", err)
	}
}

// processJob dispatches a single job by type
func (w *Worker) processJob(ctx context.Context, job *jobs.Job) error {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	switch job.Type {
	case jobs.JobTypeReconcileOverdue:
		summary, err := w.reconciler.Run(jobCtx)
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			// Another invocation path got there first; nothing to redo.
			w.logger.Info("overdue run already in progress, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("overdue run failed: %w", err)
		}
		w.logger.Info("overdue run finished",
			"overdue", summary.OverdueCount,
			"emails_sent", summary.EmailsSent,
		)
		return nil

	case jobs.JobTypeInvoiceSentEmail:
		if w.emailService == nil {
			return fmt.Errorf("no email provider configured")
		}
		var payload jobs.InvoiceSentEmailPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal invoice email payload: %w", err)
		}
		return w.emailService.SendInvoiceSent(jobCtx, payload.To, email.InvoiceSentEmail{
			ClientName:    payload.ClientName,
			InvoiceNumber: payload.InvoiceNumber,
			Total:         payload.Total,
			Currency:      payload.Currency,
			IssueDate:     payload.IssueDate,
			DueDate:       payload.DueDate,
			SenderName:    payload.SenderName,
			PaymentURL:    payload.PaymentURL,
		})

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
