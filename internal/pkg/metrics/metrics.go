package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Permission metrics
	PermissionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeview",
		Subsystem: "permission",
		Name:      "outcomes_total",
		Help:      "Location permission resolutions by outcome (granted, denied, service_error)",
	}, []string{"outcome"})

	// Location metrics
	LocationProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeview",
		Subsystem: "location",
		Name:      "probes_total",
		Help:      "One-shot location probes by result",
	}, []string{"result"})

	LocationProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routeview",
		Subsystem: "location",
		Name:      "probe_duration_seconds",
		Help:      "Time to obtain a location fix",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	})

	// Waypoint metrics
	PlaceSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeview",
		Subsystem: "waypoint",
		Name:      "selections_total",
		Help:      "Place selections per channel by result",
	}, []string{"role", "result"})

	// Route metrics
	RouteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeview",
		Subsystem: "route",
		Name:      "requests_total",
		Help:      "Route requests by result (rendered, errored, discarded)",
	}, []string{"result"})

	RouteRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routeview",
		Subsystem: "route",
		Name:      "request_duration_seconds",
		Help:      "Directions provider latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// Camera metrics
	CameraOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeview",
		Subsystem: "camera",
		Name:      "operations_total",
		Help:      "Camera operations by kind (move, fit) and whether they reached a surface",
	}, []string{"kind", "result"})

	ActiveScreens = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeview",
		Subsystem: "screen",
		Name:      "mounted",
		Help:      "Currently mounted map screens",
	})
)

// ObserveSince records the elapsed time since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Push sends the default registry to a Prometheus Pushgateway. The CLI host
// is short-lived, so metrics are pushed at exit rather than scraped.
func Push(url, job, instance string) error {
	p := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
