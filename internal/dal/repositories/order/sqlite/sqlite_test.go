package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
)

func newMockRepo(t *testing.T, events bool) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db, events), mock
}

func sampleOrder() order.Order {
	return order.Order{
		OrderID:       "ord-001",
		KioskID:       "KIOSK-001",
		CreatedAtUTC:  "2026-08-30T10:15:00Z",
		Total:         6500,
		PaymentMethod: "MOCK",
		PaymentStatus: "PAID",
		ReceivedAtUTC: "2026-08-30T10:16:02Z",
		Items: []orderitem.OrderItem{
			{ItemID: "coffee_01", Name: "Americano", UnitPrice: 3000, Qty: 1, LineTotal: 3000},
			{ItemID: "coffee_02", Name: "Latte", UnitPrice: 3500, Qty: 1, LineTotal: 3500},
		},
	}
}

func TestUpsertOrder_Inserted(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(o.OrderID, o.KioskID, o.CreatedAtUTC, o.Total, o.PaymentMethod, o.PaymentStatus, o.ReceivedAtUTC).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	status, err := repo.UpsertOrder(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, iorderstore.StatusInserted, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOrder_DuplicateOrderID(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: orders.order_id (1555)"))
	mock.ExpectRollback()

	status, err := repo.UpsertOrder(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, iorderstore.StatusDuplicate, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOrder_WritesOutboxEvent(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(
			"kiosk.orders.accepted", "kiosk.orders.accepted",
			sqlmock.AnyArg(), "application/json",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	status, err := repo.UpsertOrder(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, iorderstore.StatusInserted, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOrder_ItemInsertFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := repo.UpsertOrder(context.Background(), o)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_AppliesFiltersAndOrder(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	expectedSQL := "SELECT order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc " +
		"FROM orders WHERE created_at_utc LIKE ? AND kiosk_id = ? ORDER BY created_at_utc DESC LIMIT 100"

	rows := sqlmock.NewRows([]string{
		"order_id", "kiosk_id", "created_at_utc", "total", "payment_method", "payment_status", "received_at_utc",
	}).
		AddRow("ord-002", "KIOSK-001", "2026-08-30T12:00:00Z", 3000, "MOCK", "PAID", "2026-08-30T12:01:00Z").
		AddRow("ord-001", "KIOSK-001", "2026-08-30T10:15:00Z", 6500, "MOCK", "PAID", "2026-08-30T10:16:02Z")

	mock.ExpectQuery(regexp.QuoteMeta(expectedSQL)).
		WithArgs("2026-08-30%", "KIOSK-001").
		WillReturnRows(rows)

	got, err := repo.Query(context.Background(), order.QueryOrdersModel{
		DatePrefix: "2026-08-30",
		KioskID:    "KIOSK-001",
		Limit:      100,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ord-002", got[0].OrderID)
	assert.Equal(t, "ord-001", got[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_ClampsOversizedLimit(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	expectedSQL := "SELECT order_id, kiosk_id, created_at_utc, total, payment_method, payment_status, received_at_utc " +
		"FROM orders ORDER BY created_at_utc DESC LIMIT 5000"

	mock.ExpectQuery(regexp.QuoteMeta(expectedSQL)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "kiosk_id", "created_at_utc", "total", "payment_method", "payment_status", "received_at_utc",
		}))

	got, err := repo.Query(context.Background(), order.QueryOrdersModel{Limit: 999999})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT order_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, iorderstore.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_HydratesItems(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT order_id")).
		WithArgs("ord-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "kiosk_id", "created_at_utc", "total", "payment_method", "payment_status", "received_at_utc",
		}).AddRow("ord-001", "KIOSK-001", "2026-08-30T10:15:00Z", 6500, "MOCK", "PAID", "2026-08-30T10:16:02Z"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT item_id")).
		WithArgs("ord-001").
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "name", "unit_price", "qty", "line_total"}).
			AddRow("coffee_01", "Americano", 3000, 1, 3000).
			AddRow("coffee_02", "Latte", 3500, 1, 3500))

	got, err := repo.GetOrder(context.Background(), "ord-001")
	require.NoError(t, err)
	assert.Equal(t, "ord-001", got.OrderID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "coffee_01", got.Items[0].ItemID)
	assert.Equal(t, int64(3500), got.Items[1].LineTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesByDay_ReversesToAscending(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT substr(created_at_utc, 1, 10)")).
		WithArgs(14).
		WillReturnRows(sqlmock.NewRows([]string{"day", "order_count", "revenue"}).
			AddRow("2026-08-30", 5, 21000).
			AddRow("2026-08-29", 2, 6000).
			AddRow("2026-08-27", 1, 4500))

	got, err := repo.SalesByDay(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2026-08-27", got[0].Day)
	assert.Equal(t, "2026-08-30", got[2].Day)
	assert.Equal(t, int64(21000), got[2].Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesByDay_ClampsWindow(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT substr(created_at_utc, 1, 10)")).
		WithArgs(iorderstore.MaxWindowDays).
		WillReturnRows(sqlmock.NewRows([]string{"day", "order_count", "revenue"}))

	got, err := repo.SalesByDay(context.Background(), 100000)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsOrderUniqueViolation_MessageFallback(t *testing.T) {
	assert.True(t, isOrderUniqueViolation(errors.New("UNIQUE constraint failed: orders.order_id")))
	assert.False(t, isOrderUniqueViolation(errors.New("UNIQUE constraint failed: order_items.id")))
	assert.False(t, isOrderUniqueViolation(errors.New("database is locked")))
	assert.False(t, isOrderUniqueViolation(nil))
}
