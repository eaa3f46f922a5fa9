package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "delivery_planner"

// Outcome labels.
const (
	ResultOK         = "ok"
	ResultInfeasible = "infeasible"
	ResultError      = "error"
)

// StrategyUnknown labels plans that named a strategy with no engine.
// Strategy labels are never taken from request input.
const StrategyUnknown = "unknown"

var (
	// PlansTotal counts plan computations by strategy and result.
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plans_total",
		Help:      "Total number of plan computations, by strategy and result.",
	}, []string{"strategy", "result"})

	// PlanDuration observes how long route optimization takes.
	PlanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plan_duration_seconds",
		Help:      "Time spent computing a delivery plan.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"strategy"})

	// PlanStops observes the number of stops per computed plan.
	PlanStops = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plan_stops",
		Help:      "Number of stops in computed delivery plans.",
		Buckets:   prometheus.LinearBuckets(0, 4, 10),
	})

	// TravelCacheHits counts travel-time lookups served from cache.
	TravelCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_cache_hits_total",
		Help:      "Travel-time estimates served from cache.",
	})

	// TravelCacheMisses counts travel-time lookups that had to be computed.
	TravelCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_cache_misses_total",
		Help:      "Travel-time estimates computed because no cached value existed.",
	})

	// DispatchJobsTotal counts dispatch jobs by result.
	DispatchJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_jobs_total",
		Help:      "Total number of per-agent dispatch jobs, by result.",
	}, []string{"result"})

	// StreamSubscribers tracks connected plan stream subscribers.
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Current number of plan stream subscribers.",
	})

	// StreamDropped counts plans dropped for slow subscribers.
	StreamDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_dropped_total",
		Help:      "Plans not delivered to a subscriber because its buffer was full.",
	})

	// HTTPRequestDuration observes HTTP handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// HTTPRequestsInFlight tracks requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being served.",
	})
)

// RecordPlan records the outcome of one plan computation.
func RecordPlan(strategy, result string, took time.Duration, stops int) {
	PlansTotal.WithLabelValues(strategy, result).Inc()
	PlanDuration.WithLabelValues(strategy).Observe(took.Seconds())
	if result == ResultOK {
		PlanStops.Observe(float64(stops))
	}
}

// RecordDispatchJob records the outcome of one dispatch job.
func RecordDispatchJob(result string) {
	DispatchJobsTotal.WithLabelValues(result).Inc()
}
