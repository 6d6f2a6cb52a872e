// Package memory provides an in-memory implementation of the queue store,
// used in tests in place of the Postgres backend. Exclusivity of claim
// transactions is provided by a single mutex held for the whole unit of work.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/minhbtq/prompt-queue/internal/queue"
)

// Store is an in-memory queue.Store.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*queue.Job
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*queue.Job),
	}
}

func (s *Store) Insert(ctx context.Context, job *queue.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return queue.ErrDuplicateJob
	}

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*queue.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByID(id)
}

func (s *Store) Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(id, expected, next, result, now)
}

func (s *Store) ListPage(ctx context.Context, page, pageSize int) ([]queue.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*queue.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		records = append(records, job)
	}

	// Newest first with an id tie-break, matching the Postgres ordering.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	total := len(records)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []queue.Job{}, total, nil
	}

	end := offset + pageSize
	if end > total {
		end = total
	}

	jobs := make([]queue.Job, 0, end-offset)
	for _, job := range records[offset:end] {
		jobs = append(jobs, *job)
	}

	return jobs, total, nil
}

// ClaimTx holds the store mutex for the duration of fn, so concurrent claims
// serialize the same way Postgres claim transactions do.
func (s *Store) ClaimTx(ctx context.Context, fn func(tx queue.ClaimStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&claimTx{store: s})
}

type claimTx struct {
	store *Store
}

func (t *claimTx) FindOldestQueued(ctx context.Context) (*queue.Job, error) {
	var oldest *queue.Job
	for _, job := range t.store.jobs {
		if job.Status != queue.StatusQueued {
			continue
		}
		if oldest == nil {
			oldest = job
			continue
		}
		if job.CreatedAt.Before(oldest.CreatedAt) ||
			(job.CreatedAt.Equal(oldest.CreatedAt) && job.ID < oldest.ID) {
			oldest = job
		}
	}

	if oldest == nil {
		return nil, queue.ErrNoQueuedJobs
	}

	job := *oldest
	return &job, nil
}

func (t *claimTx) Transition(ctx context.Context, id, expected, next string, result *string, now time.Time) (bool, error) {
	return t.store.transition(id, expected, next, result, now)
}

// callers hold s.mu
func (s *Store) findByID(id string) (*queue.Job, error) {
	stored, ok := s.jobs[id]
	if !ok {
		return nil, queue.ErrJobNotFound
	}
	job := *stored
	return &job, nil
}

// callers hold s.mu
func (s *Store) transition(id, expected, next string, result *string, now time.Time) (bool, error) {
	stored, ok := s.jobs[id]
	if !ok {
		return false, nil
	}
	if stored.Status != expected {
		return false, nil
	}

	stored.Status = next
	stored.UpdatedAt = now
	if result != nil {
		value := *result
		stored.Result = &value
	} else {
		stored.Result = nil
	}

	return true, nil
}
