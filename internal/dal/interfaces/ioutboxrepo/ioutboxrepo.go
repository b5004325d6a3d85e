package ioutboxrepo

import (
	"context"
	"time"

	"github.com/kiosklabs/kiosk-sync/internal/service/models/outboxevent"
)

// IOutboxRepository defines the polling side of the order-event outbox.
// Event rows are created by the order store inside the upsert transaction;
// the outbox worker drains them through this interface.
type IOutboxRepository interface {
	// GetPendingEvents retrieves events whose next_retry_at has passed.
	GetPendingEvents(ctx context.Context, limit int) ([]outboxevent.Event, error)

	// DeleteEvent removes an event after successful delivery.
	DeleteEvent(ctx context.Context, id int64) error

	// UpdateEventRetry records a failed publish attempt and schedules the
	// next one.
	UpdateEventRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
