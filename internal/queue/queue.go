package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a job lifecycle notification emitted after a successful state
// change. Events are observability only; nothing in the claiming protocol
// depends on them.
type Event struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher receives lifecycle events. Publish failures are logged and
// otherwise ignored.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Config holds queue dependencies
type Config struct {
	Store  Store
	Logger *slog.Logger
	Events EventPublisher // optional
}

// Queue implements the job lifecycle over a durable store: enqueue, the
// atomic claiming protocol, completion, and read-only inspection.
type Queue struct {
	store  Store
	logger *slog.Logger
	events EventPublisher
}

// New creates a new Queue instance
func New(cfg *Config) *Queue {
	return &Queue{
		store:  cfg.Store,
		logger: cfg.Logger,
		events: cfg.Events,
	}
}

// Enqueue validates the prompt, inserts a new queued job and returns it.
// Blank prompts are rejected with ErrEmptyPrompt before reaching the store.
func (q *Queue) Enqueue(ctx context.Context, prompt string) (*Job, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := q.store.Insert(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	q.logger.Info("Job enqueued",
		slog.String("job_id", job.ID),
		slog.Int("prompt_length", len(prompt)),
	)

	q.publish(ctx, job.ID, StatusQueued, now)

	return job, nil
}

// Claim hands the oldest queued job to the caller, transitioning it to
// processing. Returns ErrNoQueuedJobs when the queue is empty or when a
// concurrent claimer won the job first; the caller retries on its next poll,
// never against the same row.
func (q *Queue) Claim(ctx context.Context) (*Job, error) {
	var claimed *Job
	var claimedAt time.Time

	err := q.store.ClaimTx(ctx, func(tx ClaimStore) error {
		job, err := tx.FindOldestQueued(ctx)
		if err != nil {
			return err
		}

		if !CanTransition(job.Status, StatusProcessing) {
			return fmt.Errorf("%w: job %s in status %s", ErrInvalidTransition, job.ID, job.Status)
		}

		// Stamp after the row is read so updated_at can never precede the
		// created_at of a job inserted while the claim was starting.
		now := time.Now().UTC()

		// Compare-and-swap keyed on status. Another claimer sharing the
		// store may already have moved this row to processing.
		applied, err := tx.Transition(ctx, job.ID, StatusQueued, StatusProcessing, nil, now)
		if err != nil {
			return fmt.Errorf("failed to transition job %s: %w", job.ID, err)
		}
		if !applied {
			return ErrNoQueuedJobs
		}

		job.Status = StatusProcessing
		job.UpdatedAt = now
		claimed = job
		claimedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoQueuedJobs) {
			return nil, ErrNoQueuedJobs
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	q.logger.Info("Job claimed",
		slog.String("job_id", claimed.ID),
	)

	q.publish(ctx, claimed.ID, StatusProcessing, claimedAt)

	return claimed, nil
}

// Complete moves a processing job to its terminal completed state and records
// the result, which may be an error-describing string from a failed external
// call. Completed jobs are immutable: completing an already-completed job is
// a no-op.
func (q *Queue) Complete(ctx context.Context, id, result string) error {
	now := time.Now().UTC()

	applied, err := q.store.Transition(ctx, id, StatusProcessing, StatusCompleted, &result, now)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", id, err)
	}

	if !applied {
		job, err := q.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if job.IsTerminal() {
			// Repeated completion never changes a terminal row.
			q.logger.Warn("Complete called on already-completed job",
				slog.String("job_id", id),
			)
			return nil
		}
		return fmt.Errorf("%w: cannot complete job %s in status %s", ErrInvalidTransition, id, job.Status)
	}

	q.logger.Info("Job completed",
		slog.String("job_id", id),
		slog.Int("result_length", len(result)),
	)

	q.publish(ctx, id, StatusCompleted, now)

	return nil
}

// GetStatus returns the job's id and current status.
func (q *Queue) GetStatus(ctx context.Context, id string) (*Job, error) {
	return q.store.FindByID(ctx, id)
}

// GetResult returns the job including its result when completed.
func (q *Queue) GetResult(ctx context.Context, id string) (*Job, error) {
	return q.store.FindByID(ctx, id)
}

// ListJobs returns one page of jobs, newest first, plus the total job count.
func (q *Queue) ListJobs(ctx context.Context, page, pageSize int) ([]Job, int, error) {
	return q.store.ListPage(ctx, page, pageSize)
}

func (q *Queue) publish(ctx context.Context, jobID, status string, at time.Time) {
	if q.events == nil {
		return
	}

	event := Event{
		JobID:      jobID,
		Status:     status,
		OccurredAt: at,
	}

	if err := q.events.Publish(ctx, event); err != nil {
		q.logger.Warn("Failed to publish job event",
			slog.String("job_id", jobID),
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
	}
}
