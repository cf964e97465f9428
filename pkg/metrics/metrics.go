// Package metrics provides Prometheus instrumentation for timeflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Timer kinds used as the "kind" label on host timer metrics.
const (
	KindOnce      = "once"
	KindRepeating = "repeating"
)

// Controller kinds used as the "controller" label on controller metrics.
const (
	ControllerTimeout  = "timeout"
	ControllerInterval = "interval"
)

// Registry holds all metric instances for timeflow components.
type Registry struct {
	// Host Timer Metrics
	TimersArmed      *prometheus.CounterVec
	TimersFired      *prometheus.CounterVec
	TimersCanceled   *prometheus.CounterVec
	TimersActive     *prometheus.GaugeVec
	CallbackDuration *prometheus.HistogramVec
	CallbackPanics   *prometheus.CounterVec

	// Controller Metrics
	ControllersStarted   *prometheus.CounterVec
	ImmediateStops       *prometheus.CounterVec
	DeferredStopsArmed   *prometheus.CounterVec
	DeferredStopsFired   *prometheus.CounterVec
	DeferredStopsAborted *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by timeflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Host Timer Metrics
		TimersArmed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "timers_armed_total",
				Help:      "Total number of host timers armed",
			},
			[]string{"host", "kind"},
		),

		TimersFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "timers_fired_total",
				Help:      "Total number of host timer callbacks run",
			},
			[]string{"host", "kind"},
		),

		TimersCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "timers_canceled_total",
				Help:      "Total number of live host timers canceled",
			},
			[]string{"host", "kind"},
		),

		TimersActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "timers_active",
				Help:      "Number of host timers currently armed",
			},
			[]string{"host", "kind"},
		),

		CallbackDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "callback_duration_seconds",
				Help:      "Time spent running timer callbacks on the dispatcher",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host"},
		),

		CallbackPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "hosttimer",
				Name:      "callback_panics_total",
				Help:      "Total number of timer callbacks that panicked",
			},
			[]string{"host"},
		),

		// Controller Metrics
		ControllersStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "deferred",
				Name:      "controllers_started_total",
				Help:      "Total number of timeout and interval controllers started",
			},
			[]string{"controller", "name"},
		),

		ImmediateStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "deferred",
				Name:      "immediate_stops_total",
				Help:      "Total number of immediate stops that canceled an armed timer",
			},
			[]string{"controller", "name"},
		),

		DeferredStopsArmed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "deferred",
				Name:      "deferred_stops_scheduled_total",
				Help:      "Total number of deferred stops scheduled",
			},
			[]string{"controller", "name"},
		),

		DeferredStopsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "deferred",
				Name:      "deferred_stops_fired_total",
				Help:      "Total number of deferred stops that reached their deadline",
			},
			[]string{"controller", "name"},
		),

		DeferredStopsAborted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeflow",
				Subsystem: "deferred",
				Name:      "deferred_stops_aborted_total",
				Help:      "Total number of deferred stop cancel calls",
			},
			[]string{"controller", "name"},
		),
	}
}
