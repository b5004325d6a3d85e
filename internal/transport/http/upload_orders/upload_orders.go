package uploadorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
)

// service is an interface for the service layer.
type service interface {
	UploadBatch(ctx context.Context, kioskID string, orders []syncsvc.IncomingOrder) (syncsvc.UploadResult, error)
}

// uploadRequest is the batch payload pushed by a kiosk.
type uploadRequest struct {
	KioskID string                  `json:"kiosk_id"`
	Orders  []syncsvc.IncomingOrder `json:"orders"`
}

// UploadOrders handles a kiosk batch upload. Malformed payloads are
// rejected before the store is ever called; a storage failure aborts the
// batch with a 500 so the kiosk retries it whole (dedup makes the retry
// safe).
func UploadOrders(w http.ResponseWriter, r *http.Request, service service) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.Error("Error decoding request body for upload", "error", err)

		return
	}

	if strings.TrimSpace(req.KioskID) == "" {
		http.Error(w, "kiosk_id is required", http.StatusBadRequest)

		return
	}

	result, err := service.UploadBatch(r.Context(), req.KioskID, req.Orders)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error uploading order batch", "kiosk_id", req.KioskID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error writing response for upload", "error", err)
	}
}
