package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kiosklabs/kiosk-sync/internal/dal/interfaces/iorderstore"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
)

// service is an interface for the service layer.
type service interface {
	SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error)
	GetSummary(ctx context.Context, windowDays int) (syncsvc.Summary, error)
}

func windowFromQuery(r *http.Request) int {
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil {
			return days
		}
	}

	return iorderstore.DefaultWindowDays
}

// SalesByDay handles the day-bucketed revenue report. Buckets come back in
// ascending date order for left-to-right chart rendering.
func SalesByDay(w http.ResponseWriter, r *http.Request, service service) {
	buckets, err := service.SalesByDay(r.Context(), windowFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting sales by day", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buckets); err != nil {
		slog.Error("Error writing response for sales by day", "error", err)
	}
}

// Summary handles the dashboard summary numbers.
func Summary(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.GetSummary(r.Context(), windowFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting summary", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("Error writing response for summary", "error", err)
	}
}
