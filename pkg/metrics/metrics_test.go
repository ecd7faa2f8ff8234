package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSaved(t *testing.T) {
	before := testutil.ToFloat64(combinationsSaved.WithLabelValues("QUINA", "dream"))
	RecordSaved("QUINA", "dream", 3)
	after := testutil.ToFloat64(combinationsSaved.WithLabelValues("QUINA", "dream"))
	assert.InDelta(t, 3, after-before, 1e-9)

	SetHistorySize(42)
	assert.InDelta(t, 42, testutil.ToFloat64(historySize), 1e-9)
}

func TestRecordDream(t *testing.T) {
	before := testutil.ToFloat64(dreamRequests.WithLabelValues("unknown"))
	RecordDream("", time.Second)
	assert.InDelta(t, 1, testutil.ToFloat64(dreamRequests.WithLabelValues("unknown"))-before, 1e-9)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/items/{id}", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/items/{id}", "418"))-before, 1e-9)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lottery_http_requests_total")
}
