// Package metrics holds the Prometheus collectors for the persistence server
// and the client-side save queue.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artdesk_http_requests_total",
			Help: "Requests served by the persistence server",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artdesk_http_request_duration_seconds",
			Help:    "Time spent serving requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// BlobRows is the row count of the last blob stored under each key.
	BlobRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artdesk_blob_rows",
			Help: "Rows in the most recently saved blob",
		},
		[]string{"key"},
	)

	Saves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artdesk_saves_total",
			Help: "Debounced saves attempted by the client",
		},
		[]string{"table", "status"},
	)
)

// Save status labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

func RecordRequest(route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func RecordSave(table, status string) {
	Saves.WithLabelValues(table, status).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
