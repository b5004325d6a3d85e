package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
)

type stubService struct {
	status syncsvc.HealthStatus
}

func (s *stubService) Health(_ context.Context) syncsvc.HealthStatus {
	return s.status
}

func TestHealth_OK(t *testing.T) {
	svc := &stubService{status: syncsvc.HealthStatus{
		OK:      true,
		StoreOK: true,
		Backend: "sqlite",
		TimeUTC: "2026-08-30T10:16:02Z",
	}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	Health(rec, req, svc)

	require.Equal(t, http.StatusOK, rec.Code)

	var got syncsvc.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.OK)
	assert.Equal(t, "sqlite", got.Backend)
}

func TestHealth_Stays200WhenDegraded(t *testing.T) {
	svc := &stubService{status: syncsvc.HealthStatus{
		OK:      false,
		StoreOK: false,
		Backend: "postgres",
		TimeUTC: "2026-08-30T10:16:02Z",
	}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	Health(rec, req, svc)

	require.Equal(t, http.StatusOK, rec.Code)

	var got syncsvc.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.OK)
	assert.False(t, got.StoreOK)
}
