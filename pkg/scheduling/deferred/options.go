package deferred

import (
	"github.com/vnykmshr/timeflow/pkg/logx"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/hosttimer"
)

// Option configures a controller.
type Option func(*options)

type options struct {
	host    hosttimer.Host
	log     logx.Logger
	metrics *metrics.Registry
	name    string
}

// WithHost runs the controller on host instead of hosttimer.Default().
func WithHost(host hosttimer.Host) Option { return func(o *options) { o.host = host } }

// WithLogger sets the logger for lifecycle debug lines.
func WithLogger(log logx.Logger) Option { return func(o *options) { o.log = log } }

// WithMetrics records controller metrics in reg. A nil reg disables metrics.
func WithMetrics(reg *metrics.Registry) Option { return func(o *options) { o.metrics = reg } }

// WithName labels the controller in logs and metrics (default: "default").
func WithName(name string) Option { return func(o *options) { o.name = name } }

func buildOptions(opts []Option) options {
	o := options{name: "default"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.host == nil {
		o.host = hosttimer.Default()
	}
	return o
}
