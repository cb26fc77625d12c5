package registry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *io_prometheus_client.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func outcomeLabels(f *io_prometheus_client.MetricFamily) map[string]bool {
	out := make(map[string]bool)
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "outcome" {
				out[l.GetValue()] = true
			}
		}
	}
	return out
}

func TestMetricsInitExposesAllOutcomeSeries(t *testing.T) {
	m := GetMetrics()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)
	m.Init()

	counters := gatherFamily(t, reg, "dispatch_registry_resolves_total")
	require.NotNil(t, counters)
	histograms := gatherFamily(t, reg, "dispatch_registry_resolve_duration_seconds")
	require.NotNil(t, histograms)

	// Every outcome series exists before a single request was resolved.
	want := []string{outcomeMatched, outcomeNegotiated, outcomeNoMatch, outcomeParseError}
	for _, outcome := range want {
		assert.True(t, outcomeLabels(counters)[outcome], "missing counter series %q", outcome)
		assert.True(t, outcomeLabels(histograms)[outcome], "missing histogram series %q", outcome)
	}
}

func TestObserveResolveIncrementsOutcome(t *testing.T) {
	m := GetMetrics()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)

	before := counterValue(t, reg, outcomeMatched)
	m.ObserveResolve(outcomeMatched, time.Millisecond)
	after := counterValue(t, reg, outcomeMatched)

	assert.Equal(t, before+1, after)
}

func counterValue(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()

	f := gatherFamily(t, reg, "dispatch_registry_resolves_total")
	if f == nil {
		return 0
	}
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "outcome" && l.GetValue() == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
