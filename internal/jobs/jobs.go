// Package jobs defines the background job types, their payloads, and the
// queue interface they travel through. The queue itself is Postgres-backed;
// see internal/postgres.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job type constants
const (
	JobTypeReconcileOverdue = "invoice:reconcile_overdue"
	JobTypeInvoiceSentEmail = "email:invoice_sent"
)

// QueueDefault is the queue every job runs on. Split queues only matter once
// job volume does.
const QueueDefault = "default"

// Job is a claimed unit of work.
type Job struct {
	ID         uuid.UUID
	Type       string
	Queue      string
	Payload    []byte
	RetryCount int
	MaxRetries int
}

// EnqueueParams describes a job to enqueue.
type EnqueueParams struct {
	JobType     string
	Queue       string
	Payload     []byte
	Priority    int // lower runs first
	MaxRetries  int
	ScheduledAt time.Time
}

// Queue is the producer/consumer surface of the job store.
type Queue interface {
	// Enqueue adds a job. Zero-value Queue, Priority, MaxRetries, and
	// ScheduledAt fields get sensible defaults.
	Enqueue(ctx context.Context, params EnqueueParams) (uuid.UUID, error)

	// Claim atomically takes the next due pending job on the queue for
	// workerID. Returns nil when nothing is due.
	Claim(ctx context.Context, queue, workerID string) (*Job, error)

	// Complete marks a running job as done.
	Complete(ctx context.Context, jobID uuid.UUID) error

	// Fail records a failure. Jobs with retries left go back to pending
	// with a delay; exhausted jobs stay failed.
	Fail(ctx context.Context, jobID uuid.UUID, errMessage string) error
}
