package queue

import (
	"context"
	"time"
)

// Store is the durable store contract the queue core runs on. All persisted
// job state lives behind this interface; the Postgres implementation is in
// internal/storage and an in-memory implementation backs the tests.
type Store interface {
	// Insert persists a new job with status queued. Returns ErrDuplicateJob
	// if the id already exists rather than overwriting.
	Insert(ctx context.Context, job *Job) error

	// FindByID returns the job with the given id, or ErrJobNotFound.
	FindByID(ctx context.Context, id string) (*Job, error)

	// Transition conditionally moves a job to a new status, setting result
	// and updated_at, only if its current status equals expected. Returns
	// whether the update applied. This is a single atomic compare-and-swap
	// against the store, not a read-then-write.
	Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error)

	// ListPage returns jobs ordered by created_at descending along with the
	// total number of jobs. Pages are 1-based.
	ListPage(ctx context.Context, page, pageSize int) ([]Job, int, error)

	// ClaimTx runs fn inside an exclusive unit of work. Claim operations from
	// other holders of the same store serialize against it, so the oldest
	// queued row cannot be read by two claimers before either transitions it.
	ClaimTx(ctx context.Context, fn func(tx ClaimStore) error) error
}

// ClaimStore is the subset of store operations available inside a claim
// transaction.
type ClaimStore interface {
	// FindOldestQueued returns the queued job with the smallest created_at
	// (ties broken by id), or ErrNoQueuedJobs. The row is locked for the
	// remainder of the transaction.
	FindOldestQueued(ctx context.Context) (*Job, error)

	// Transition behaves as Store.Transition, scoped to the transaction.
	Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error)
}
