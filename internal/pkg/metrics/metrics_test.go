package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePayrollRun(t *testing.T) {
	before := testutil.ToFloat64(PayrollRunsTotal.WithLabelValues("done"))
	createdBefore := testutil.ToFloat64(PayoutsCreatedTotal)

	ObservePayrollRun("done", 150*time.Millisecond, 3)

	assert.Equal(t, before+1, testutil.ToFloat64(PayrollRunsTotal.WithLabelValues("done")))
	assert.Equal(t, createdBefore+3, testutil.ToFloat64(PayoutsCreatedTotal))
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/payouts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := HttpRequestsTotal.WithLabelValues("GET", "/payouts/{id}", "202")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payouts/abc", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler_ExposesPayrollMetrics(t *testing.T) {
	ObservePayoutStatusUpdate("PAID")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payroll_payout_status_updates_total")
}
