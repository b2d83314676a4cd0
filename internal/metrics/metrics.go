package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "topup"

var (
	shiftsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "shifts",
		Name:      "created_total",
		Help:      "Total number of cleaning shifts created.",
	})

	availabilityConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "availability",
		Name:      "conflicts_total",
		Help:      "Scheduling attempts rejected by the availability checker, by conflict kind.",
	}, []string{"kind"})

	timeChangeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "time_change",
		Name:      "outcomes_total",
		Help:      "Time change requests broken down by resulting status.",
	}, []string{"status"})

	notificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatched_total",
		Help:      "Notification intents delivered to the store, by type and result.",
	}, []string{"type", "result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "runs_total",
		Help:      "Scheduled job executions by job name and result.",
	}, []string{"job", "result"})
)

func ShiftCreated() {
	shiftsCreated.Inc()
}

func AvailabilityConflict(kind string) {
	availabilityConflicts.WithLabelValues(kind).Inc()
}

func TimeChangeOutcome(status string) {
	timeChangeOutcomes.WithLabelValues(status).Inc()
}

func NotificationDispatched(notificationType string, ok bool) {
	notificationsDispatched.WithLabelValues(notificationType, result(ok)).Inc()
}

func HTTPRequest(method, route string, status int, latency time.Duration) {
	httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

func JobRun(job string, ok bool) {
	jobRuns.WithLabelValues(job, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
