package syncsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
	"github.com/kiosklabs/kiosk-sync/internal/validate"
)

// SyncService is the ingestion gateway and reporting facade over the order
// store. It owns batch-level concerns (receipt timestamps, per-order
// validation, accepted/duplicate tallies); everything about dedup and
// atomicity is delegated to the store.
type SyncService struct {
	store iorderstore.Repository
}

// option is a function that configures the SyncService.
type option func(*SyncService)

// MustNewSyncService creates a new SyncService.
func MustNewSyncService(opts ...option) *SyncService {
	s := &SyncService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		panic("syncsvc: order store is required")
	}

	return s
}

// WithStore sets the order store for the SyncService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStore(store iorderstore.Repository) option {
	return func(s *SyncService) {
		s.store = store
	}
}

// IncomingOrder is one order record as uploaded by a kiosk.
type IncomingOrder struct {
	OrderID       string                `json:"order_id"`
	CreatedAtUTC  string                `json:"created_at_utc"`
	Total         int64                 `json:"total"`
	Items         []orderitem.OrderItem `json:"items"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
}

// UploadResult tallies one batch call. ReceivedAtUTC is shared by every
// order accepted in the batch.
type UploadResult struct {
	Accepted      int    `json:"accepted"`
	Duplicates    int    `json:"duplicates"`
	Rejected      int    `json:"rejected"`
	ReceivedAtUTC string `json:"received_at_utc"`
}

// UploadBatch records a batch of kiosk orders, one upsert per order in
// input order. Duplicates and per-order validation failures are routine
// outcomes and never abort the rest of the batch; a storage failure does,
// and surfaces to the caller with the partial tallies discarded.
func (s *SyncService) UploadBatch(ctx context.Context, kioskID string, orders []IncomingOrder) (UploadResult, error) {
	result := UploadResult{
		ReceivedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}

	for _, in := range orders {
		o := order.Order{
			OrderID:       in.OrderID,
			KioskID:       kioskID,
			CreatedAtUTC:  in.CreatedAtUTC,
			Total:         in.Total,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: in.PaymentStatus,
			ReceivedAtUTC: result.ReceivedAtUTC,
			Items:         in.Items,
		}
		if o.PaymentMethod == "" {
			o.PaymentMethod = "MOCK"
		}
		if o.PaymentStatus == "" {
			o.PaymentStatus = "PAID"
		}

		if err := validate.ValidateOrder(o); err != nil {
			slog.Warn("Rejecting invalid order in batch", "kiosk_id", kioskID, "order_id", in.OrderID, "error", err)
			result.Rejected++

			continue
		}

		status, err := s.store.UpsertOrder(ctx, o)
		if err != nil {
			return UploadResult{}, fmt.Errorf("upsert order %s: %w", o.OrderID, err)
		}

		if status == iorderstore.StatusInserted {
			result.Accepted++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}

// ListOrders retrieves orders matching the filter, newest first.
func (s *SyncService) ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	return s.store.Query(ctx, filter)
}

// GetOrder fetches one order with its items. Returns
// iorderstore.ErrNotFound for unknown IDs.
func (s *SyncService) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// SalesByDay returns day buckets in ascending date order.
func (s *SyncService) SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error) {
	return s.store.SalesByDay(ctx, windowDays)
}

// ExportOrders lists matching orders and hydrates each with its items. An
// order deleted between the list and the point lookup is skipped, not an
// error.
func (s *SyncService) ExportOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	listed, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]order.Order, 0, len(listed))
	for _, o := range listed {
		full, err := s.store.GetOrder(ctx, o.OrderID)
		if err != nil {
			if errors.Is(err, iorderstore.ErrNotFound) {
				continue
			}

			return nil, err
		}
		result = append(result, full)
	}

	return result, nil
}

// Summary carries the dashboard numbers: today's totals plus the recent
// day buckets.
type Summary struct {
	TodayCount   int                      `json:"today_count"`
	TodayRevenue int64                    `json:"today_revenue"`
	Days         []salesreport.DailySales `json:"days"`
}

// GetSummary computes the dashboard summary over the last windowDays.
func (s *SyncService) GetSummary(ctx context.Context, windowDays int) (Summary, error) {
	days, err := s.store.SalesByDay(ctx, windowDays)
	if err != nil {
		return Summary{}, err
	}

	todayPrefix := time.Now().UTC().Format("2006-01-02")
	todayOrders, err := s.store.Query(ctx, order.QueryOrdersModel{
		DatePrefix: todayPrefix,
		Limit:      iorderstore.MaxListLimit,
	})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TodayCount: len(todayOrders),
		Days:       days,
	}
	for _, o := range todayOrders {
		summary.TodayRevenue += o.Total
	}

	return summary, nil
}

// HealthStatus is the health endpoint payload. A failed probe degrades the
// flags; it is never an error.
type HealthStatus struct {
	OK      bool   `json:"ok"`
	StoreOK bool   `json:"store_ok"`
	Backend string `json:"backend"`
	TimeUTC string `json:"time_utc"`
}

// Health probes store connectivity once, with no retry.
func (s *SyncService) Health(ctx context.Context) HealthStatus {
	err := s.store.Ping(ctx)
	if err != nil {
		slog.Warn("Store connectivity probe failed", "backend", s.store.Kind(), "error", err)
	}

	return HealthStatus{
		OK:      err == nil,
		StoreOK: err == nil,
		Backend: s.store.Kind(),
		TimeUTC: time.Now().UTC().Format(time.RFC3339),
	}
}
