package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/outboxevent"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
)

// Repository is the SQLite-backed order store. It runs over database/sql
// with the modernc driver; the WAL and busy_timeout pragmas the client's
// DSN applies to every connection let concurrent upserts queue on the
// single writer instead of failing with SQLITE_BUSY, so racers on one
// order_id resolve through the primary-key constraint.
type Repository struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	events bool
}

// NewRepository creates a SQLite order repository. When events is true,
// every inserted order also writes an outbox_events row inside the same
// transaction for the outbox worker to publish.
func NewRepository(db *sql.DB, events bool) *Repository {
	return &Repository{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		events: events,
	}
}

// UpsertOrder inserts o and its items in one transaction, reporting a
// duplicate when the order_id primary key already exists.
func (r *Repository) UpsertOrder(ctx context.Context, o order.Order) (iorderstore.UpsertStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.OrderID, o.KioskID, o.CreatedAtUTC, o.Total, o.PaymentMethod, o.PaymentStatus, o.ReceivedAtUTC)
	if err != nil {
		if isOrderUniqueViolation(err) {
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
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return 0, fmt.Errorf("insert items for order %s: %w", o.OrderID, err)
		}
	}

	if r.events {
		payload, err := json.Marshal(o)
		if err != nil {
			return 0, fmt.Errorf("marshal order event: %w", err)
		}

		now := nowMillis()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outbox_events (queue_name, routing_key, payload, content_type, created_at, updated_at, next_retry_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, outboxevent.OrderAcceptedQueue, outboxevent.OrderAcceptedRoutingKey, payload, outboxevent.ContentTypeJSON, now, now, now)
		if err != nil {
			return 0, fmt.Errorf("insert outbox event for order %s: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
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

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
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
	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc
		FROM orders
		WHERE order_id = ?
	`, orderID).Scan(
		&o.OrderID, &o.KioskID, &o.CreatedAtUTC, &o.Total,
		&o.PaymentMethod, &o.PaymentStatus, &o.ReceivedAtUTC,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Order{}, iorderstore.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, name, unit_price, qty, line_total
		FROM order_items
		WHERE order_id = ?
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

// SalesByDay aggregates per UTC calendar date, most recent windowDays
// buckets, reversed to ascending for chart rendering.
func (r *Repository) SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(created_at_utc, 1, 10) AS day,
		       COUNT(*) AS order_count,
		       COALESCE(SUM(total), 0) AS revenue
		FROM orders
		GROUP BY substr(created_at_utc, 1, 10)
		ORDER BY day DESC
		LIMIT ?
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

// Ping performs a single round trip against the database handle.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Kind labels the backend for health output.
func (r *Repository) Kind() string {
	return "sqlite"
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func isOrderUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	message := strings.ToLower(err.Error())

	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "orders.order_id")
}

var _ iorderstore.Repository = (*Repository)(nil)
