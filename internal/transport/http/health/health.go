package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
)

// service is an interface for the service layer.
type service interface {
	Health(ctx context.Context) syncsvc.HealthStatus
}

// Health reports process and store health. The endpoint stays 200 even
// when the store probe fails so monitors can read the degraded payload
// instead of a dead socket.
func Health(w http.ResponseWriter, r *http.Request, service service) {
	status := service.Health(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("Error writing response for health", "error", err)
	}
}
