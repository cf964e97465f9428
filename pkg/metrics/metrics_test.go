package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.TimersArmed.WithLabelValues("h", KindOnce).Inc()
	r.TimersFired.WithLabelValues("h", KindRepeating).Inc()
	r.TimersCanceled.WithLabelValues("h", KindOnce).Inc()
	r.TimersActive.WithLabelValues("h", KindOnce).Set(1)
	r.CallbackDuration.WithLabelValues("h").Observe(0.01)
	r.CallbackPanics.WithLabelValues("h").Inc()
	r.ControllersStarted.WithLabelValues(ControllerTimeout, "n").Inc()
	r.ImmediateStops.WithLabelValues(ControllerTimeout, "n").Inc()
	r.DeferredStopsArmed.WithLabelValues(ControllerInterval, "n").Inc()
	r.DeferredStopsFired.WithLabelValues(ControllerInterval, "n").Inc()
	r.DeferredStopsAborted.WithLabelValues(ControllerInterval, "n").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 11 {
		t.Errorf("got %d metric families, want 11", len(families))
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "timeflow_") {
			t.Errorf("metric %q missing timeflow namespace", mf.GetName())
		}
	}
}

func TestNewRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRegistry(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic registering the same collectors twice")
		}
	}()
	NewRegistry(reg)
}

func TestGaugeTracksActiveTimers(t *testing.T) {
	r := NewRegistry(prometheus.NewRegistry())
	g := r.TimersActive.WithLabelValues("h", KindRepeating)

	g.Inc()
	g.Inc()
	g.Dec()

	if got := testutil.ToFloat64(g); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
}
