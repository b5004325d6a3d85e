package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/ioutboxrepo"
	"github.com/kiosklabs/kiosk-sync/internal/dal/rabbitmq"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/outboxevent"
)

// Worker drains the order-accepted outbox: events written by the order
// store during upsert transactions are published to RabbitMQ, deleted on
// success and rescheduled with exponential backoff on failure.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	rabbitClient  *rabbitmq.Client
	pollInterval  time.Duration
	batchSize     int
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker and declares the target queue.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	rabbitClient *rabbitmq.Client,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    outboxevent.OrderAcceptedQueue,
		Durable: true,
	}); err != nil {
		panic(err)
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		rabbitClient: rabbitClient,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing events from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processEvents(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processEvents retrieves and publishes pending events.
func (w *Worker) processEvents(ctx context.Context) {
	events, err := w.outboxRepo.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending events from outbox", "error", err)

		return
	}

	if len(events) == 0 {
		return
	}

	slog.Info("Publishing outbox events", "count", len(events))

	for _, event := range events {
		err := w.rabbitClient.Channel().Publish(
			event.ExchangeName,
			event.RoutingKey,
			false,
			false,
			amqp.Publishing{
				ContentType: event.ContentType,
				Body:        event.Payload,
			},
		)

		if err != nil {
			// Exponential backoff: 60s, 120s, 240s, ...
			newRetryCount := event.RetryCount + 1
			backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30
			nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

			slog.Warn("Failed to publish event from outbox, will retry",
				"outbox_id", event.ID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if err := w.outboxRepo.UpdateEventRetry(ctx, event.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update retry information", "outbox_id", event.ID, "error", err)
			}
		} else {
			if err := w.outboxRepo.DeleteEvent(ctx, event.ID); err != nil {
				slog.Error("Failed to delete event from outbox after successful publish",
					"outbox_id", event.ID,
					"error", err,
				)
			}
		}
	}
}
