package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/minhbtq/prompt-queue/internal/queue"
	"github.com/minhbtq/prompt-queue/shared/postgresql"
)

const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS jobs (
		id         TEXT PRIMARY KEY,
		prompt     TEXT NOT NULL,
		status     TEXT NOT NULL,
		result     TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status_created_at
		ON jobs (status, created_at);
`

// Storage is the Postgres-backed durable store for jobs. All coordination
// between the API service and the worker goes through this table; there is
// no other shared state between the two processes.
type Storage struct {
	client *postgresql.Client
	db     *sqlx.DB
	logger *slog.Logger
}

// New creates a Storage on top of an established PostgreSQL client.
func New(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		client: pg,
		db:     pg.GetDB(),
		logger: logger,
	}
}

// EnsureSchema creates the jobs table and its status/created_at index if they
// do not exist. Both services call this at startup.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure jobs schema: %w", err)
	}
	return nil
}

// Insert persists a new job. A primary-key conflict is reported as
// queue.ErrDuplicateJob rather than overwriting the existing row.
func (s *Storage) Insert(ctx context.Context, job *queue.Job) error {
	query := `
		INSERT INTO jobs (id, prompt, status, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Prompt,
		job.Status,
		job.Result,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return queue.ErrDuplicateJob
		}
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// FindByID returns the job with the given id, or queue.ErrJobNotFound.
func (s *Storage) FindByID(ctx context.Context, id string) (*queue.Job, error) {
	query := `
		SELECT id, prompt, status, result, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	var job queue.Job
	err := s.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queue.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// Transition conditionally updates a job's status. The status predicate makes
// this a compare-and-swap: the affected-row count tells the caller whether it
// won the transition.
func (s *Storage) Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error) {
	return transition(ctx, s.db, id, expected, next, result, now)
}

// ListPage returns one page of jobs ordered newest first, plus the total
// number of jobs. Pages are 1-based.
func (s *Storage) ListPage(ctx context.Context, page, pageSize int) ([]queue.Job, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs`); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	query := `
		SELECT id, prompt, status, result, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	jobs := []queue.Job{}
	offset := (page - 1) * pageSize
	if err := s.db.SelectContext(ctx, &jobs, query, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

// ClaimTx runs fn inside a database transaction. The oldest-queued lookup
// locks the row it returns, so concurrent claim transactions from any process
// sharing the database serialize on it.
func (s *Storage) ClaimTx(ctx context.Context, fn func(tx queue.ClaimStore) error) error {
	tx, err := s.client.BeginTx(ctx)
	if err != nil {
		return err
	}

	if err := fn(&claimTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back claim transaction",
				slog.String("error", rbErr.Error()),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim transaction: %w", err)
	}

	return nil
}

type claimTx struct {
	tx *sqlx.Tx
}

// FindOldestQueued returns the queued job with the smallest created_at, ties
// broken by id. FOR UPDATE blocks other claim transactions until this one
// commits, at which point their status predicate no longer matches.
func (t *claimTx) FindOldestQueued(ctx context.Context) (*queue.Job, error) {
	query := `
		SELECT id, prompt, status, result, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT 1
		FOR UPDATE
	`

	var job queue.Job
	err := t.tx.GetContext(ctx, &job, query, queue.StatusQueued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queue.ErrNoQueuedJobs
		}
		return nil, fmt.Errorf("failed to find oldest queued job: %w", err)
	}

	return &job, nil
}

func (t *claimTx) Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error) {
	return transition(ctx, t.tx, id, expected, next, result, now)
}

func transition(ctx context.Context, execer sqlx.ExtContext, id, expected, next string, result *string, now time.Time) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    result = $2,
		    updated_at = $3
		WHERE id = $4
		  AND status = $5
	`

	res, err := execer.ExecContext(ctx, query, next, result, now, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to transition job status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}
