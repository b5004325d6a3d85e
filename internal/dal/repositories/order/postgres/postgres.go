package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/dal/postgres"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/outboxevent"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
)

// unique_violation, raised when two writers race on the same order_id.
const pgUniqueViolation = "23505"

// Repository is the pgx-backed order store.
type Repository struct {
	client *postgres.Client
	sb     sq.StatementBuilderType
	events bool
}

// NewRepository creates a Postgres order repository. When events is true,
// every inserted order also writes an outbox_events row inside the same
// transaction for the outbox worker to publish.
func NewRepository(client *postgres.Client, events bool) *Repository {
	return &Repository{
		client: client,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		events: events,
	}
}

// UpsertOrder inserts o and its items in one transaction. A primary-key
// conflict on order_id means some earlier upload already won; the
// transaction is rolled back untouched and the call reports a duplicate.
func (r *Repository) UpsertOrder(ctx context.Context, o order.Order) (iorderstore.UpsertStatus, error) {
	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.OrderID, o.KioskID, o.CreatedAtUTC, o.Total, o.PaymentMethod, o.PaymentStatus, o.ReceivedAtUTC)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return iorderstore.StatusDuplicate, nil
		}

		return 0, fmt.Errorf("insert order %s: %w", o.OrderID, err)
	}

	if len(o.Items) > 0 {
		query := r.sb.Insert("order_items").
			Columns("order_id", "item_id", "name", "unit_price", "qty", "line_total")
		for _, item := range o.Items {
			query = query.Values(o.OrderID, item.ItemID, item.Name, item.UnitPrice, item.Qty, item.LineTotal)
		}

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build item insert: %w", err)
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return 0, fmt.Errorf("insert items for order %s: %w", o.OrderID, err)
		}
	}

	if r.events {
		payload, err := json.Marshal(o)
		if err != nil {
			return 0, fmt.Errorf("marshal order event: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO outbox_events (queue_name, routing_key, payload, content_type)
			VALUES ($1, $2, $3, $4)
		`, outboxevent.OrderAcceptedQueue, outboxevent.OrderAcceptedRoutingKey, payload, outboxevent.ContentTypeJSON)
		if err != nil {
			return 0, fmt.Errorf("insert outbox event for order %s: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit order %s: %w", o.OrderID, err)
	}

	return iorderstore.StatusInserted, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *Repository) Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select("order_id", "kiosk_id", "created_at_utc", "total", "payment_method", "payment_status", "received_at_utc").
		From("orders")

	if filter.DatePrefix != "" {
		query = query.Where(sq.Like{"created_at_utc": filter.DatePrefix + "%"})
	}
	if filter.KioskID != "" {
		query = query.Where(sq.Eq{"kiosk_id": filter.KioskID})
	}

	query = query.
		OrderBy("created_at_utc DESC").
		Limit(uint64(iorderstore.ClampLimit(filter.Limit)))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(
			&o.OrderID, &o.KioskID, &o.CreatedAtUTC, &o.Total,
			&o.PaymentMethod, &o.PaymentStatus, &o.ReceivedAtUTC,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetOrder fetches one order with its items in insertion order.
func (r *Repository) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	var o order.Order
	err := r.client.Pool().QueryRow(ctx, `
		SELECT order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc
		FROM orders
		WHERE order_id = $1
	`, orderID).Scan(
		&o.OrderID, &o.KioskID, &o.CreatedAtUTC, &o.Total,
		&o.PaymentMethod, &o.PaymentStatus, &o.ReceivedAtUTC,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, iorderstore.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}

	rows, err := r.client.Pool().Query(ctx, `
		SELECT item_id, name, unit_price, qty, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return order.Order{}, fmt.Errorf("get items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item orderitem.OrderItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.UnitPrice, &item.Qty, &item.LineTotal); err != nil {
			return order.Order{}, fmt.Errorf("scan item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return order.Order{}, fmt.Errorf("rows iteration error: %w", err)
	}

	return o, nil
}

// SalesByDay aggregates per UTC calendar date. The query selects the most
// recent windowDays buckets, then the slice is reversed so charts read
// oldest to newest.
func (r *Repository) SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error) {
	rows, err := r.client.Pool().Query(ctx, `
		SELECT substr(created_at_utc, 1, 10) AS day,
		       COUNT(*) AS order_count,
		       COALESCE(SUM(total), 0) AS revenue
		FROM orders
		GROUP BY substr(created_at_utc, 1, 10)
		ORDER BY day DESC
		LIMIT $1
	`, iorderstore.ClampWindow(windowDays))
	if err != nil {
		return nil, fmt.Errorf("query sales by day: %w", err)
	}
	defer rows.Close()

	result := []salesreport.DailySales{}
	for rows.Next() {
		var bucket salesreport.DailySales
		if err := rows.Scan(&bucket.Day, &bucket.OrderCount, &bucket.Revenue); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		result = append(result, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	slices.Reverse(result)

	return result, nil
}

// Ping performs a single round trip against the pool.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Pool().Ping(ctx)
}

// Kind labels the backend for health output.
func (r *Repository) Kind() string {
	return "postgres"
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	r.client.Close()

	return nil
}

var _ iorderstore.Repository = (*Repository)(nil)
