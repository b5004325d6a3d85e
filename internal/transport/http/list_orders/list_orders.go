package listorders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
)

// service is an interface for the service layer.
type service interface {
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, orderID string) (order.Order, error)
	ExportOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

func filterFromQuery(r *http.Request, defaultLimit int) order.QueryOrdersModel {
	query := r.URL.Query()

	filter := order.QueryOrdersModel{
		DatePrefix: query.Get("date"),
		KioskID:    query.Get("kiosk_id"),
		Limit:      defaultLimit,
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	return filter
}

// ListOrders handles the admin order listing.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ListOrders(r.Context(), filterFromQuery(r, iorderstore.DefaultListLimit))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error writing response for list orders", "error", err)
	}
}

// GetOrder handles the admin order detail lookup. An unknown order_id is a
// routine 404, not a server error.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID := chi.URLParam(r, "order_id")

	o, err := service.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, iorderstore.ErrNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)

			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting order", "order_id", orderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(o); err != nil {
		slog.Error("Error writing response for get order", "error", err)
	}
}

// ExportOrders handles the full JSON export: matching orders hydrated with
// their items.
func ExportOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ExportOrders(r.Context(), filterFromQuery(r, 2000))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error exporting orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error writing response for export", "error", err)
	}
}
