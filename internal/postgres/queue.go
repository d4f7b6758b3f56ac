package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dorianvale/praxis/internal/domain"
	"github.com/dorianvale/praxis/internal/jobs"
)

// JobQueue implements jobs.Queue on the jobs table. Claiming uses
// FOR UPDATE SKIP LOCKED so multiple workers never grab the same job.
type JobQueue struct {
	db DB
}

// NewJobQueue creates a new JobQueue instance.
func NewJobQueue(db DB) *JobQueue {
	return &JobQueue{db: db}
}

var _ jobs.Queue = (*JobQueue)(nil)

// Enqueue adds a job, filling in defaults for zero-valued params.
func (q *JobQueue) Enqueue(ctx context.Context, params jobs.EnqueueParams) (uuid.UUID, error) {
	if params.Queue == "" {
		params.Queue = jobs.QueueDefault
	}
	if params.Priority == 0 {
		params.Priority = 100
	}
	if params.MaxRetries == 0 {
		params.MaxRetries = 3
	}
	if params.ScheduledAt.IsZero() {
		params.ScheduledAt = time.Now()
	}
	if len(params.Payload) == 0 {
		params.Payload = []byte("{}")
	}

	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		INSERT INTO jobs (job_type, queue, payload, priority, max_retries, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		params.JobType, params.Queue, params.Payload, params.Priority,
		params.MaxRetries, params.ScheduledAt).Scan(&id)
	if err != nil {
		return uuid.Nil, domain.WrapError(err, domain.EINTERNAL, "jobs.enqueue", "failed to enqueue job")
	}
	return id, nil
}

// Claim takes the next due pending job for workerID, or nil when idle.
func (q *JobQueue) Claim(ctx context.Context, queue, workerID string) (*jobs.Job, error) {
	var job jobs.Job
	err := q.db.QueryRow(ctx, `
		UPDATE jobs
		SET status = 'running', started_at = now(), worker_id = $2
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'pending' AND queue = $1 AND scheduled_at <= now()
			ORDER BY priority, scheduled_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, queue, payload, retry_count, max_retries`,
		queue, workerID).Scan(&job.ID, &job.Type, &job.Queue, &job.Payload,
		&job.RetryCount, &job.MaxRetries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, "jobs.claim", "failed to claim job")
	}
	return &job, nil
}

// Complete marks a running job as done.
func (q *JobQueue) Complete(ctx context.Context, jobID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE jobs SET status = 'completed', completed_at = now()
		WHERE id = $1`, jobID)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "jobs.complete", "failed to complete job")
	}
	return nil
}

// Fail records a failure. Jobs with retries left return to pending with a
// backoff proportional to the retry count; exhausted jobs stay failed.
func (q *JobQueue) Fail(ctx context.Context, jobID uuid.UUID, errMessage string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE jobs
		SET retry_count = retry_count + 1,
		    error_message = $2,
		    status = CASE WHEN retry_count + 1 < max_retries THEN 'pending' ELSE 'failed' END,
		    scheduled_at = CASE WHEN retry_count + 1 < max_retries
		        THEN now() + make_interval(mins => retry_count + 1)
		        ELSE scheduled_at END,
		    completed_at = CASE WHEN retry_count + 1 < max_retries THEN NULL ELSE now() END
		WHERE id = $1`, jobID, errMessage)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "jobs.fail", "failed to record job failure")
	}
	return nil
}
