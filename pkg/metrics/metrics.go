// Package metrics exposes Prometheus collectors for the crawl manager client.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"crawl-mgmt-go/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by ObserveRequest.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuppressed = "suppressed"
)

var (
	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	crawlsByStatus         *prometheus.GaugeVec
	crawlQueueLength       *prometheus.GaugeVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlman_requests_total",
				Help: "Total number of dispatched API requests, labeled by operation and outcome.",
			},
			[]string{"op", "outcome"},
		)

		requestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawlman_request_duration_seconds",
				Help:    "Histogram of API request latencies, labeled by operation.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"op"},
		)

		crawlsByStatus = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawlman_crawls",
				Help: "Number of known crawls, labeled by status.",
			},
			[]string{"status"},
		)

		crawlQueueLength = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawlman_crawl_queue_length",
				Help: "Number of queued URLs per crawl.",
			},
			[]string{"id"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one dispatch. Suppressed dispatches have no duration.
func ObserveRequest(op, outcome string, duration time.Duration) {
	Init()
	requestsTotal.WithLabelValues(op, outcome).Inc()
	if outcome != OutcomeSuppressed {
		requestDurationSeconds.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// ObserveStore refreshes the crawl gauges from a store listing.
func ObserveStore(crawls []models.Crawl) {
	Init()
	crawlsByStatus.Reset()
	crawlQueueLength.Reset()

	for _, status := range []models.Status{models.StatusNew, models.StatusRunning, models.StatusStopped, models.StatusDone} {
		crawlsByStatus.WithLabelValues(string(status)).Set(0)
	}
	for _, c := range crawls {
		crawlsByStatus.WithLabelValues(string(c.Status)).Inc()
		crawlQueueLength.WithLabelValues(c.ID).Set(float64(c.NumQueue))
	}
}
