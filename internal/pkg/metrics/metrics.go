package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PayrollRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_runs_total",
			Help: "Payroll runs by outcome",
		},
		[]string{"outcome"},
	)

	PayrollRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_run_duration_seconds",
			Help:    "Duration of payroll runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	PayoutsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payroll_payouts_created_total",
			Help: "Payout rows committed by payroll runs",
		},
	)

	PayoutStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_payout_status_updates_total",
			Help: "Payout status writes by target status",
		},
		[]string{"status"},
	)
)

// ObservePayrollRun records one finished run.
func ObservePayrollRun(outcome string, duration time.Duration, payoutsCreated int) {
	PayrollRunsTotal.WithLabelValues(outcome).Inc()
	PayrollRunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if payoutsCreated > 0 {
		PayoutsCreatedTotal.Add(float64(payoutsCreated))
	}
}

func ObservePayoutStatusUpdate(status string) {
	PayoutStatusUpdatesTotal.WithLabelValues(status).Inc()
}

// Instrument records request counts and latencies keyed by the chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// unmatched paths share one label to keep cardinality bounded
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HttpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		ResponseTimeHistogram.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
