// Package metrics exposes Prometheus collectors for the monitor service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sweepsTotal          prometheus.Counter
	sweepDurationSeconds prometheus.Histogram
	changesTotal         *prometheus.CounterVec
	fetchFailuresTotal   *prometheus.CounterVec
	notificationsTotal   *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times; observation helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		sweepsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "monitor_sweeps_total",
				Help: "Total number of completed sweeps.",
			},
		)

		sweepDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "monitor_sweep_duration_seconds",
				Help:    "Histogram of sweep wall-clock durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		)

		changesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monitor_changes_total",
				Help: "Total number of detected changes, labeled by category.",
			},
			[]string{"category"},
		)

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monitor_fetch_failures_total",
				Help: "Total number of failed source fetches, labeled by kind.",
			},
			[]string{"kind"},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monitor_notifications_total",
				Help: "Total number of outbound alert deliveries, labeled by status.",
			},
			[]string{"status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSweep records one completed sweep.
func ObserveSweep(duration time.Duration) {
	if sweepsTotal == nil {
		return
	}
	sweepsTotal.Inc()
	sweepDurationSeconds.Observe(duration.Seconds())
}

// ObserveChange increments the change counter for a category.
func ObserveChange(category string) {
	if changesTotal == nil {
		return
	}
	changesTotal.WithLabelValues(category).Inc()
}

// ObserveFetchFailure increments the failure counter for a fetch error kind.
func ObserveFetchFailure(kind string) {
	if fetchFailuresTotal == nil {
		return
	}
	fetchFailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveNotification increments the delivery counter for a status.
func ObserveNotification(status string) {
	if notificationsTotal == nil {
		return
	}
	notificationsTotal.WithLabelValues(status).Inc()
}
