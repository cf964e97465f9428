// Package metrics provides Prometheus instrumentation for timeflow components.
//
// # Overview
//
// Two groups of metrics are exported:
//   - Host timers (armed, fired, canceled, active, callback duration, callback panics)
//   - Deferred controllers (started, immediate stops, deferred stops scheduled, fired and aborted)
//
// # Quick Start
//
// The runtime host takes a Config:
//
//	host, err := hosttimer.NewRuntime(hosttimer.Config{
//		Name:    "jobs",
//		Metrics: metrics.Config{Enabled: true},
//	})
//
// Controllers take a Registry directly:
//
//	t := deferred.StartTimeout(fn, when.After(time.Minute),
//		deferred.WithMetrics(metrics.DefaultRegistry),
//		deferred.WithName("report"))
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, typically in tests:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewRegistry(reg)
//
// # Available Metrics
//
//   - timeflow_hosttimer_timers_armed_total{host,kind}
//   - timeflow_hosttimer_timers_fired_total{host,kind}
//   - timeflow_hosttimer_timers_canceled_total{host,kind}
//   - timeflow_hosttimer_timers_active{host,kind}
//   - timeflow_hosttimer_callback_duration_seconds{host}
//   - timeflow_hosttimer_callback_panics_total{host}
//   - timeflow_deferred_controllers_started_total{controller,name}
//   - timeflow_deferred_immediate_stops_total{controller,name}
//   - timeflow_deferred_deferred_stops_scheduled_total{controller,name}
//   - timeflow_deferred_deferred_stops_fired_total{controller,name}
//   - timeflow_deferred_deferred_stops_aborted_total{controller,name}
//
// The kind label is "once" or "repeating"; the controller label is "timeout" or "interval".
package metrics
