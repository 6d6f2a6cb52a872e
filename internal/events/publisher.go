// Package events publishes job lifecycle notifications to RabbitMQ for
// external observers. Publishing is fire-and-forget: the claiming protocol
// never reads from the broker, and the database stays the only coordination
// channel between the API service and the worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minhbtq/prompt-queue/internal/queue"
	"github.com/minhbtq/prompt-queue/shared/rabbitmq"
)

// Publisher sends queue.Event messages to a RabbitMQ exchange.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a Publisher on top of an established RabbitMQ client.
func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// Publish sends one lifecycle event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event queue.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("Job event published",
		slog.String("job_id", event.JobID),
		slog.String("status", event.Status),
	)

	return nil
}
