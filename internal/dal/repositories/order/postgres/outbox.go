package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/ioutboxrepo"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/outboxevent"
)

// GetPendingEvents retrieves events that are due for (re)delivery.
func (r *Repository) GetPendingEvents(ctx context.Context, limit int) ([]outboxevent.Event, error) {
	query, args, err := r.sb.
		Select(
			"id", "queue_name", "exchange_name", "routing_key", "payload", "content_type",
			"retry_count", "max_retries", "last_error", "created_at", "updated_at", "next_retry_at",
		).
		From("outbox_events").
		Where(sq.LtOrEq{"next_retry_at": time.Now()}).
		Where("retry_count < max_retries").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending events query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending events: %w", err)
	}
	defer rows.Close()

	var events []outboxevent.Event
	for rows.Next() {
		var e outboxevent.Event
		if err := rows.Scan(
			&e.ID, &e.QueueName, &e.ExchangeName, &e.RoutingKey, &e.Payload, &e.ContentType,
			&e.RetryCount, &e.MaxRetries, &e.LastError, &e.CreatedAt, &e.UpdatedAt, &e.NextRetryAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}

// DeleteEvent removes an event after successful delivery.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	if _, err := r.client.Pool().Exec(ctx, `DELETE FROM outbox_events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}

	return nil
}

// UpdateEventRetry records a failed publish attempt.
func (r *Repository) UpdateEventRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := r.sb.
		Update("outbox_events").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build retry update: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update retry for event %d: %w", id, err)
	}

	return nil
}

var _ ioutboxrepo.IOutboxRepository = (*Repository)(nil)
