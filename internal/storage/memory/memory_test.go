package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhbtq/prompt-queue/internal/queue"
	"github.com/minhbtq/prompt-queue/internal/storage/memory"
)

func insertJob(t *testing.T, store *memory.Store, id string, createdAt time.Time) *queue.Job {
	t.Helper()
	job := &queue.Job{
		ID:        id,
		Prompt:    "prompt " + id,
		Status:    queue.StatusQueued,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.Insert(context.Background(), job))
	return job
}

func TestStore_Insert_Duplicate(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()

	insertJob(t, store, "job-1", now)

	err := store.Insert(context.Background(), &queue.Job{
		ID:        "job-1",
		Prompt:    "other",
		Status:    queue.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.ErrorIs(t, err, queue.ErrDuplicateJob)

	// The original row is untouched.
	job, err := store.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "prompt job-1", job.Prompt)
}

func TestStore_Transition_Conditional(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	insertJob(t, store, "job-1", now)

	// Wrong expected status does not apply.
	applied, err := store.Transition(ctx, "job-1", queue.StatusProcessing, queue.StatusCompleted, nil, now)
	require.NoError(t, err)
	assert.False(t, applied)

	// Unknown id does not apply.
	applied, err = store.Transition(ctx, "missing", queue.StatusQueued, queue.StatusProcessing, nil, now)
	require.NoError(t, err)
	assert.False(t, applied)

	// Matching expected status applies exactly once.
	later := now.Add(time.Second)
	applied, err = store.Transition(ctx, "job-1", queue.StatusQueued, queue.StatusProcessing, nil, later)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.Transition(ctx, "job-1", queue.StatusQueued, queue.StatusProcessing, nil, later)
	require.NoError(t, err)
	assert.False(t, applied)

	job, err := store.FindByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, queue.StatusProcessing, job.Status)
	assert.Equal(t, later, job.UpdatedAt)
}

func TestStore_Transition_SetsResult(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	insertJob(t, store, "job-1", now)

	_, err := store.Transition(ctx, "job-1", queue.StatusQueued, queue.StatusProcessing, nil, now)
	require.NoError(t, err)

	result := "the answer"
	applied, err := store.Transition(ctx, "job-1", queue.StatusProcessing, queue.StatusCompleted, &result, now)
	require.NoError(t, err)
	assert.True(t, applied)

	job, err := store.FindByID(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Equal(t, "the answer", *job.Result)
}

func TestStore_FindOldestQueued(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()

	insertJob(t, store, "newer", base.Add(time.Second))
	insertJob(t, store, "older", base)

	err := store.ClaimTx(ctx, func(tx queue.ClaimStore) error {
		job, err := tx.FindOldestQueued(ctx)
		require.NoError(t, err)
		assert.Equal(t, "older", job.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_FindOldestQueued_TiesByID(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	// Inserted out of id order on purpose; equal created_at falls back to
	// the smallest id, same as the Postgres ORDER BY created_at, id.
	insertJob(t, store, "job-b", now)
	insertJob(t, store, "job-a", now)

	err := store.ClaimTx(ctx, func(tx queue.ClaimStore) error {
		job, err := tx.FindOldestQueued(ctx)
		require.NoError(t, err)
		assert.Equal(t, "job-a", job.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_FindOldestQueued_SkipsNonQueued(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	insertJob(t, store, "job-1", now)
	_, err := store.Transition(ctx, "job-1", queue.StatusQueued, queue.StatusProcessing, nil, now)
	require.NoError(t, err)

	err = store.ClaimTx(ctx, func(tx queue.ClaimStore) error {
		_, err := tx.FindOldestQueued(ctx)
		return err
	})
	assert.ErrorIs(t, err, queue.ErrNoQueuedJobs)
}

func TestStore_ListPage(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 12; i++ {
		insertJob(t, store, string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
	}

	jobs, total, err := store.ListPage(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, jobs, 5)
	assert.Equal(t, "l", jobs[0].ID)

	jobs, total, err = store.ListPage(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, jobs, 2)

	jobs, _, err = store.ListPage(ctx, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
