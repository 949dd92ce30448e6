package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "focus_tracker"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of handled HTTP requests, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests, labeled by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	activityChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "changes_total",
		Help:      "Number of activity writes, labeled by operation.",
	}, []string{"op"})

	analyticsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "weekly_duration_seconds",
		Help:      "Time spent fetching and aggregating one weekly summary.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of activity events handed to a publisher, labeled by sink and result.",
	}, []string{"sink", "result"})

	liveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "subscribers",
		Help:      "Number of open live activity streams.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, activityChanges, analyticsDuration, eventsPublished, liveSubscribers)
}

// ObserveRequest records one served request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncActivityChange op is one of create, update, delete
func IncActivityChange(op string) {
	activityChanges.WithLabelValues(op).Inc()
}

func ObserveAnalytics(elapsed time.Duration) {
	analyticsDuration.Observe(elapsed.Seconds())
}

// IncEventPublished records a publish attempt on sink
func IncEventPublished(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(sink, result).Inc()
}

// AddLiveSubscribers delta is +1 on subscribe and -1 on cancel
func AddLiveSubscribers(delta int) {
	liveSubscribers.Add(float64(delta))
}
