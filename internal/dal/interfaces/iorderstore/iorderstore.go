package iorderstore

import (
	"context"
	"errors"

	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
)

// ErrNotFound is returned by GetOrder for an unknown order_id. Callers are
// expected to treat it as a routine outcome, not a storage failure.
var ErrNotFound = errors.New("order not found")

// UpsertStatus reports what UpsertOrder did.
type UpsertStatus int

const (
	// StatusInserted means the order and all of its items were persisted.
	StatusInserted UpsertStatus = iota
	// StatusDuplicate means a row with the same order_id already existed
	// and nothing was written. Duplicates are a normal consequence of
	// kiosks retrying uploads and are not errors.
	StatusDuplicate
)

func (s UpsertStatus) String() string {
	if s == StatusInserted {
		return "inserted"
	}

	return "duplicate"
}

// Repository is the order store contract. One implementation exists per
// backend (postgres, sqlite); the choice is made at startup and callers
// never see the difference.
//
// All correctness guarantees around deduplication live behind UpsertOrder:
// the implementation must perform the order insert and the item inserts in
// a single database transaction and rely on the primary-key constraint on
// order_id — not an application-level lock — to serialize concurrent
// writers on the same order.
type Repository interface {
	// UpsertOrder inserts o and its items atomically, or detects that
	// o.OrderID is already persisted and reports StatusDuplicate without
	// writing anything.
	UpsertOrder(ctx context.Context, o order.Order) (UpsertStatus, error)

	// Query lists orders matching the filter, newest first by
	// created_at_utc, capped at filter.Limit rows. A match-nothing filter
	// yields an empty slice and no error.
	Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)

	// GetOrder fetches one order with its items (insertion order) or
	// ErrNotFound.
	GetOrder(ctx context.Context, orderID string) (order.Order, error)

	// SalesByDay buckets orders by UTC calendar date over the most recent
	// windowDays distinct days that have at least one order, ascending.
	SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error)

	// Ping performs one side-effect-free round trip against the live
	// connection. It must not retry and must not panic.
	Ping(ctx context.Context) error

	// Kind labels the backend ("postgres" or "sqlite") for health output.
	Kind() string

	// Close releases the underlying connection or pool.
	Close() error
}
