package transport

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcome labels.
const (
	RefreshOutcomeSuccess      = "success"
	RefreshOutcomeFailure      = "failure"
	RefreshOutcomeSkipped      = "skipped_expired"
	RefreshOutcomeNoToken      = "no_refresh_token"
	RefreshOutcomeDecodeFailed = "decode_failed"
)

// Metrics holds the client-side request counters. A single Metrics value is
// shared by the metrics stage and the refresh stage.
type Metrics struct {
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Retries   prometheus.Counter
}

// NewMetrics creates and registers the client counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrilink",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend requests by method and status code.",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrilink",
			Subsystem: "client",
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrilink",
			Subsystem: "client",
			Name:      "request_retries_total",
			Help:      "Requests replayed after a successful token refresh.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Refreshes, m.Retries)
	}
	return m
}

// Stage returns the response stage that counts request outcomes.
func (m *Metrics) Stage() ResponseStage {
	return ResponseStageFunc(func(req *http.Request, res *http.Response, err error) (*http.Response, error) {
		status := "error"
		if res != nil {
			status = strconv.Itoa(res.StatusCode)
		}
		m.Requests.WithLabelValues(req.Method, status).Inc()
		return res, err
	})
}
