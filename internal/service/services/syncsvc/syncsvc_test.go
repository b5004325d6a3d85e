package syncsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) UpsertOrder(ctx context.Context, o order.Order) (iorderstore.UpsertStatus, error) {
	args := m.Called(ctx, o)

	return args.Get(0).(iorderstore.UpsertStatus), args.Error(1)
}

func (m *mockStore) Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockStore) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	args := m.Called(ctx, orderID)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *mockStore) SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error) {
	args := m.Called(ctx, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]salesreport.DailySales), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Kind() string {
	return m.Called().String(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func validIncoming(orderID string) IncomingOrder {
	return IncomingOrder{
		OrderID:      orderID,
		CreatedAtUTC: "2026-08-30T10:15:00Z",
		Total:        3000,
		Items: []orderitem.OrderItem{
			{ItemID: "coffee_01", Name: "Americano", UnitPrice: 3000, Qty: 1, LineTotal: 3000},
		},
	}
}

func TestUploadBatch_TalliesOutcomes(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	store.On("UpsertOrder", mock.Anything, mock.MatchedBy(func(o order.Order) bool {
		return o.OrderID == "ord-new"
	})).Return(iorderstore.StatusInserted, nil).Once()
	store.On("UpsertOrder", mock.Anything, mock.MatchedBy(func(o order.Order) bool {
		return o.OrderID == "ord-dup"
	})).Return(iorderstore.StatusDuplicate, nil).Once()

	batch := []IncomingOrder{
		validIncoming("ord-new"),
		validIncoming("ord-dup"),
		{OrderID: "", CreatedAtUTC: "2026-08-30T10:15:00Z"},
	}

	result, err := svc.UploadBatch(context.Background(), "KIOSK-001", batch)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Rejected)
	assert.NotEmpty(t, result.ReceivedAtUTC)
	store.AssertExpectations(t)
}

func TestUploadBatch_AppliesPaymentDefaultsAndSharedReceipt(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	var seen []order.Order
	store.On("UpsertOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = append(seen, args.Get(1).(order.Order))
		}).
		Return(iorderstore.StatusInserted, nil).Twice()

	first := validIncoming("ord-001")
	second := validIncoming("ord-002")
	second.PaymentMethod = "CARD"
	second.PaymentStatus = "REFUNDED"

	result, err := svc.UploadBatch(context.Background(), "KIOSK-007", []IncomingOrder{first, second})
	require.NoError(t, err)
	require.Len(t, seen, 2)

	assert.Equal(t, "MOCK", seen[0].PaymentMethod)
	assert.Equal(t, "PAID", seen[0].PaymentStatus)
	assert.Equal(t, "CARD", seen[1].PaymentMethod)
	assert.Equal(t, "REFUNDED", seen[1].PaymentStatus)

	assert.Equal(t, "KIOSK-007", seen[0].KioskID)
	assert.Equal(t, result.ReceivedAtUTC, seen[0].ReceivedAtUTC)
	assert.Equal(t, result.ReceivedAtUTC, seen[1].ReceivedAtUTC)

	_, parseErr := time.Parse(time.RFC3339, result.ReceivedAtUTC)
	assert.NoError(t, parseErr)
}

func TestUploadBatch_StorageFailureAbortsBatch(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	store.On("UpsertOrder", mock.Anything, mock.Anything).
		Return(iorderstore.UpsertStatus(0), errors.New("database is locked")).Once()

	result, err := svc.UploadBatch(context.Background(), "KIOSK-001", []IncomingOrder{
		validIncoming("ord-001"),
		validIncoming("ord-002"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ord-001")
	assert.Equal(t, UploadResult{}, result)
	store.AssertNumberOfCalls(t, "UpsertOrder", 1)
}

func TestUploadBatch_EmptyBatch(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	result, err := svc.UploadBatch(context.Background(), "KIOSK-001", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.NotEmpty(t, result.ReceivedAtUTC)
	store.AssertNotCalled(t, "UpsertOrder")
}

func TestExportOrders_SkipsOrdersDeletedMidExport(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	listed := []order.Order{{OrderID: "ord-001"}, {OrderID: "ord-gone"}, {OrderID: "ord-003"}}
	store.On("Query", mock.Anything, mock.Anything).Return(listed, nil).Once()
	store.On("GetOrder", mock.Anything, "ord-001").
		Return(order.Order{OrderID: "ord-001", Items: []orderitem.OrderItem{{ItemID: "coffee_01"}}}, nil).Once()
	store.On("GetOrder", mock.Anything, "ord-gone").
		Return(order.Order{}, iorderstore.ErrNotFound).Once()
	store.On("GetOrder", mock.Anything, "ord-003").
		Return(order.Order{OrderID: "ord-003"}, nil).Once()

	got, err := svc.ExportOrders(context.Background(), order.QueryOrdersModel{Limit: 2000})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ord-001", got[0].OrderID)
	assert.Equal(t, "ord-003", got[1].OrderID)
	store.AssertExpectations(t)
}

func TestGetSummary_SumsTodayRevenue(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	days := []salesreport.DailySales{
		{Day: "2026-08-29", OrderCount: 2, Revenue: 6000},
		{Day: "2026-08-30", OrderCount: 3, Revenue: 10500},
	}
	store.On("SalesByDay", mock.Anything, 14).Return(days, nil).Once()

	todayPrefix := time.Now().UTC().Format("2006-01-02")
	store.On("Query", mock.Anything, mock.MatchedBy(func(f order.QueryOrdersModel) bool {
		return f.DatePrefix == todayPrefix && f.Limit == iorderstore.MaxListLimit
	})).Return([]order.Order{{Total: 3000}, {Total: 4500}}, nil).Once()

	got, err := svc.GetSummary(context.Background(), 14)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TodayCount)
	assert.Equal(t, int64(7500), got.TodayRevenue)
	assert.Equal(t, days, got.Days)
	store.AssertExpectations(t)
}

func TestHealth_DegradesWhenProbeFails(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	store.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	store.On("Kind").Return("postgres")

	got := svc.Health(context.Background())
	assert.False(t, got.OK)
	assert.False(t, got.StoreOK)
	assert.Equal(t, "postgres", got.Backend)
	assert.NotEmpty(t, got.TimeUTC)
	store.AssertNumberOfCalls(t, "Ping", 1)
}

func TestHealth_Healthy(t *testing.T) {
	store := &mockStore{}
	svc := MustNewSyncService(WithStore(store))

	store.On("Ping", mock.Anything).Return(nil).Once()
	store.On("Kind").Return("sqlite")

	got := svc.Health(context.Background())
	assert.True(t, got.OK)
	assert.True(t, got.StoreOK)
	assert.Equal(t, "sqlite", got.Backend)
}

func TestMustNewSyncService_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		MustNewSyncService()
	})
}
