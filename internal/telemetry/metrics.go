package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "syllabus_jobs_submitted_total", Help: "Jobs handed to the worker pool"}, []string{"kind"})
	JobsCompleted    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "syllabus_jobs_completed_total", Help: "Jobs that reached completed"}, []string{"kind"})
	JobsFailed       = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "syllabus_jobs_failed_total", Help: "Jobs that reached failed"}, []string{"kind"})
	QueueRejects     = prometheus.NewCounter(prometheus.CounterOpts{Name: "syllabus_queue_rejects_total", Help: "Submissions rejected because the worker queue was full"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "syllabus_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	ProviderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "syllabus_provider_failures_total", Help: "Provider calls that returned an error"}, []string{"provider"})
	ProviderDemo     = prometheus.NewCounter(prometheus.CounterOpts{Name: "syllabus_provider_demo_total", Help: "Dispatches answered with the demo placeholder"})
	InFlightGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "syllabus_jobs_inflight", Help: "Jobs currently running"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsCompleted,
			JobsFailed,
			QueueRejects,
			RateLimitRejects,
			ProviderFailures,
			ProviderDemo,
			InFlightGauge,
		)
	})
	return promhttp.Handler()
}
