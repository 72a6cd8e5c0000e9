// Package observability exposes Prometheus metrics for the escrow engine
// and the HTTP API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Engine Metrics ─────────────────────────────────────────────────────────

// Metrics implements the escrow engine's metrics sink.
type Metrics struct {
	transitions *prometheus.CounterVec
	disputes    *prometheus.CounterVec
	sweeps      prometheus.Counter
	fees        *prometheus.CounterVec
}

// NewMetrics registers the engine metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handleswap_transitions_total",
			Help: "Escrow state transitions by target status.",
		}, []string{"to"}),
		disputes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handleswap_disputes_total",
			Help: "Disputes raised by reason.",
		}, []string{"reason"}),
		sweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "handleswap_sweep_expirations_total",
			Help: "Transactions expired or cancelled by the deadline sweep.",
		}),
		fees: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "handleswap_fees_collected_cents_total",
			Help: "Fees collected at settlement, in cents, by fee type.",
		}, []string{"fee"}),
	}
}

// Transition counts one state transition.
func (m *Metrics) Transition(to domain.Status) {
	m.transitions.WithLabelValues(string(to)).Inc()
}

// DisputeRaised counts one dispute by reason.
func (m *Metrics) DisputeRaised(reason domain.DisputeReason) {
	m.disputes.WithLabelValues(string(reason)).Inc()
}

// SweepExpired counts one deadline-driven expiry.
func (m *Metrics) SweepExpired() {
	m.sweeps.Inc()
}

// FeesCollected records the fee split of a settled transaction.
func (m *Metrics) FeesCollected(fees domain.FeeBreakdown) {
	m.fees.WithLabelValues("escrow").Add(float64(fees.EscrowFee))
	m.fees.WithLabelValues("processing").Add(float64(fees.ProcessingFee))
	m.fees.WithLabelValues("platform").Add(float64(fees.PlatformFee))
}

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

var httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "handleswap_http_request_duration_seconds",
	Help:    "HTTP request latency by method and status code.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "code"})

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request durations.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpDuration.WithLabelValues(r.Method, strconv.Itoa(rec.code)).
			Observe(time.Since(start).Seconds())
	})
}
