package queue

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the store
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when inserting a job whose id already exists
	ErrDuplicateJob = errors.New("job id already exists")

	// ErrEmptyPrompt is returned when a submitted prompt is empty or blank
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrNoQueuedJobs is returned by Claim when no queued job is available
	// this attempt, either because the queue is empty or because a concurrent
	// claimer won the job first
	ErrNoQueuedJobs = errors.New("no queued jobs available")

	// ErrInvalidTransition is returned when a status change would move a job
	// backward or skip a stage
	ErrInvalidTransition = errors.New("invalid status transition")
)
