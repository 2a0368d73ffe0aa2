package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	frames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "core",
			Name:      "frames_total",
			Help:      "Total render frame cycles driven.",
		},
	)
	frameDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "xrblocks",
			Subsystem: "core",
			Name:      "frame_duration_seconds",
			Help:      "Render frame cycle duration in seconds.",
			Buckets:   []float64{.0005, .001, .002, .004, .008, .0166, .033, .066, .1},
		},
	)
	physicsSteps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "physics",
			Name:      "steps_total",
			Help:      "Total fixed-timestep physics integrations.",
		},
	)
	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session lifecycle state transitions.",
		},
		[]string{"from", "to"},
	)
	scriptInits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "script",
			Name:      "inits_total",
			Help:      "Script initializations by outcome.",
		},
		[]string{"outcome"},
	)
	scriptDisposes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "script",
			Name:      "disposes_total",
			Help:      "Script disposals.",
		},
	)
	scriptHookPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "script",
			Name:      "hook_panics_total",
			Help:      "Recovered panics inside script hooks.",
		},
		[]string{"hook"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrblocks",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total debug server HTTP requests.",
		},
		[]string{"app", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xrblocks",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Debug server HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"app", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			frames, frameDuration, physicsSteps,
			sessionTransitions,
			scriptInits, scriptDisposes, scriptHookPanics,
			httpRequests, httpDuration,
		)
	})
}

func RecordFrame(duration time.Duration) {
	RegisterMetrics()
	frames.Inc()
	frameDuration.Observe(duration.Seconds())
}

func RecordPhysicsStep() {
	RegisterMetrics()
	physicsSteps.Inc()
}

func RecordSessionTransition(from, to string) {
	RegisterMetrics()
	sessionTransitions.WithLabelValues(from, to).Inc()
}

func RecordScriptInit(outcome string) {
	RegisterMetrics()
	scriptInits.WithLabelValues(outcome).Inc()
}

func RecordScriptDispose() {
	RegisterMetrics()
	scriptDisposes.Inc()
}

func RecordHookPanic(hook string) {
	RegisterMetrics()
	scriptHookPanics.WithLabelValues(hook).Inc()
}

func RecordHTTPRequest(app, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(app, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(app, method, path, statusLabel).Observe(duration.Seconds())
}
