package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/minhbtq/prompt-queue/internal/queue"
)

// Config holds worker configuration
type Config struct {
	Logger       *slog.Logger
	Queue        *queue.Queue
	Generator    Generator
	PollInterval time.Duration
}

// Worker is the single sequential consumer of the job queue. Each iteration
// claims at most one job, runs the external generation call to completion,
// and writes back the terminal state before claiming again. Multiple worker
// processes may run against the same store; the claiming protocol guarantees
// each job is handed to exactly one of them.
type Worker struct {
	logger       *slog.Logger
	queue        *queue.Queue
	generator    Generator
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:       cfg.Logger,
		queue:        cfg.Queue,
		generator:    cfg.Generator,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start runs the poll loop until the context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.Duration("poll_interval", w.pollInterval),
	)

	w.wg.Add(1)
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopping - context canceled")
			return nil
		case <-w.stopChan:
			w.logger.Info("Worker stopping - stop requested")
			return nil
		default:
		}

		job, err := w.queue.Claim(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrNoQueuedJobs) {
				w.sleep(ctx)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			// Transient store errors are logged and retried on the next poll.
			w.logger.Error("Failed to claim job",
				slog.String("error", err.Error()),
			)
			w.sleep(ctx)
			continue
		}

		w.processJob(ctx, job)
	}
}

// Stop requests a graceful stop and waits for the in-flight job to finish.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// processJob runs the external generation call for a claimed job and records
// the outcome. A failed call still completes the job, with an error-describing
// result, so no job is ever left in processing because of the external
// service.
func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	w.logger.Info("Processing job",
		slog.String("job_id", job.ID),
	)

	result, err := w.generator.Generate(ctx, job.Prompt)
	if err != nil {
		w.logger.Error("Generation call failed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		result = fmt.Sprintf("Worker error: %s", err.Error())
	}

	// Completion must not be skipped on shutdown; the job is already claimed.
	completeCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		completeCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	if err := w.queue.Complete(completeCtx, job.ID, result); err != nil {
		w.logger.Error("Failed to complete job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.stopChan:
	case <-timer.C:
	}
}
