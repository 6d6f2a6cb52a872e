package handler

import (
	"context"
	"log/slog"

	"github.com/minhbtq/prompt-queue/internal/queue"
)

// HealthChecker reports whether the durable store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger *slog.Logger
	Queue  *queue.Queue
	Health HealthChecker // optional
}

// PromptHandler handles prompt-related HTTP requests
type PromptHandler struct {
	logger *slog.Logger
	queue  *queue.Queue
}

// NewPromptHandler creates a new PromptHandler instance
func NewPromptHandler(deps *Dependencies) *PromptHandler {
	return &PromptHandler{
		logger: deps.Logger,
		queue:  deps.Queue,
	}
}
