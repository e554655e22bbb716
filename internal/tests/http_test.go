package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabs/internal/app"
	"cabs/internal/domain"
	"cabs/internal/handler"
	"cabs/internal/pricing"
	"cabs/internal/service"
)

func newTestRouter(t *testing.T, repo *MockTransitRepository, locks *MockLockStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	transitService := newTransitService(repo, NewMockCacheStore(), locks)
	receiptService := service.NewReceiptService(nil)
	reportService := service.NewDriverReportService(repo, pricing.NewCalculator(), nil, 0, nil)

	return app.NewRouter(app.RouterDeps{
		TransitHandler:      handler.NewTransitHandler(transitService, receiptService),
		DriverReportHandler: handler.NewDriverReportHandler(reportService),
	})
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHTTP_TransitPricingFlow(t *testing.T) {
	repo := NewMockTransitRepository()
	router := newTestRouter(t, repo, NewMockLockStore())

	w := doRequest(router, http.MethodPost, "/v1/transits", map[string]any{
		"client_id":       "client-1",
		"driver_id":       "driver-1",
		"from_address_id": "address-1",
		"to_address_id":   "address-2",
		"car_class":       "VAN",
		"date_time":       "2021-04-17T19:30:00Z",
		"distance_km":     20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handler.TransitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "DRAFT", created.Status)
	assert.Equal(t, "20km", created.Distance)

	w = doRequest(router, http.MethodPost, "/v1/transits/"+created.ID+"/estimate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"transit_id": "`+created.ID+`",
		"category": "SATURDAY_NIGHT",
		"base_fee": "10.00",
		"distance_fee": "50.00",
		"total": "60.00"
	}`, mustField(t, w.Body.Bytes(), "quote"))

	w = doRequest(router, http.MethodPost, "/v1/transits/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var completed handler.CompleteTransitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, "COMPLETED", completed.Transit.Status)
	require.NotNil(t, completed.Receipt)
	assert.Contains(t, completed.Receipt.Text, "60.00")

	w = doRequest(router, http.MethodGet, "/v1/transits/"+created.ID+"/final-cost", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":"60.00"`)

	// A completed transit can no longer be estimated.
	w = doRequest(router, http.MethodPost, "/v1/transits/"+created.ID+"/estimate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot estimate a price for a concluded ride")
}

func TestHTTP_ErrorMapping(t *testing.T) {
	repo := NewMockTransitRepository()
	repo.AddTransit(newTransit(t, "cancelled", domain.TransitStatusCancelled, friday))
	repo.AddTransit(newTransit(t, "busy", domain.TransitStatusDraft, friday))
	locks := NewMockLockStore()
	router := newTestRouter(t, repo, locks)

	_, _, err := locks.AcquireTransitLock(context.Background(), "busy", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown transit", http.MethodGet, "/v1/transits/missing", nil, http.StatusNotFound},
		{"final cost of cancelled", http.MethodGet, "/v1/transits/cancelled/final-cost", nil, http.StatusConflict},
		{"complete cancelled", http.MethodPost, "/v1/transits/cancelled/complete", nil, http.StatusConflict},
		{"locked transit", http.MethodPost, "/v1/transits/busy/estimate", nil, http.StatusLocked},
		{"negative distance", http.MethodPost, "/v1/transits", map[string]any{
			"client_id": "c", "from_address_id": "a", "to_address_id": "b",
			"date_time": "2021-04-16T08:30:00Z", "distance_km": -3,
		}, http.StatusBadRequest},
		{"overflowing distance", http.MethodPost, "/v1/transits", map[string]any{
			"client_id": "c", "from_address_id": "a", "to_address_id": "b",
			"date_time": "2021-04-16T08:30:00Z", "distance_km": 1e16,
		}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/v1/transits", "not an object", http.StatusBadRequest},
		{"bad lookback", http.MethodGet, "/driverreport/driver-1?lastDays=abc", nil, http.StatusBadRequest},
		{"lookback too long", http.MethodGet, "/driverreport/driver-1?lastDays=366", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHTTP_CancelWithReason(t *testing.T) {
	repo := NewMockTransitRepository()
	repo.AddTransit(newTransit(t, "transit-1", domain.TransitStatusWaitingForDriverAssignment, friday))
	router := newTestRouter(t, repo, nil)

	w := doRequest(router, http.MethodPost, "/v1/transits/transit-1/cancel", map[string]string{"reason": "no driver"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handler.TransitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "no driver", resp.CancelReason)
	assert.NotEmpty(t, resp.CancelledAt)
}

func TestHTTP_DriverReport(t *testing.T) {
	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "transit-1", domain.TransitStatusCompleted, time.Now().Add(-time.Hour)), 2900, 2900))
	router := newTestRouter(t, repo, nil)

	w := doRequest(router, http.MethodGet, "/driverreport/driver-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handler.DriverReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.LastDays)
	assert.Equal(t, 1, resp.CompletedCount)
	require.Len(t, resp.Transits, 1)
	assert.Equal(t, "transit-1", resp.Transits[0].TransitID)
	assert.Contains(t, w.Body.String(), `"total_earnings":"29.00"`)
}

func TestHTTP_Health(t *testing.T) {
	router := newTestRouter(t, NewMockTransitRepository(), nil)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	raw, ok := m[field]
	require.True(t, ok, "missing field %q", field)
	return string(raw)
}
