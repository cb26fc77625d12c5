package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherCacheFamily(t *testing.T, reg *prometheus.Registry, name string) *io_prometheus_client.MetricFamily {
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

func labelSets(f *io_prometheus_client.MetricFamily) []map[string]string {
	var out []map[string]string
	for _, m := range f.GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		out = append(out, labels)
	}
	return out
}

func hasLabels(f *io_prometheus_client.MetricFamily, want map[string]string) bool {
	for _, labels := range labelSets(f) {
		match := true
		for k, v := range want {
			if labels[k] != v {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestCacheMetricsInitExposesAllBackendSeries(t *testing.T) {
	m := GetCacheMetrics()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)
	m.Init()

	backends := []string{"memory", "redis"}
	ops := []string{"get", "set", "delete", "exists"}

	for _, name := range []string{
		"dispatch_cache_hits_total",
		"dispatch_cache_misses_total",
		"dispatch_cache_evictions_total",
		"dispatch_cache_size",
	} {
		f := gatherCacheFamily(t, reg, name)
		require.NotNil(t, f, "family %q not gathered", name)
		for _, backend := range backends {
			assert.True(t, hasLabels(f, map[string]string{"backend": backend}),
				"%s missing backend series %q", name, backend)
		}
	}

	for _, name := range []string{
		"dispatch_cache_operation_duration_seconds",
		"dispatch_cache_errors_total",
	} {
		f := gatherCacheFamily(t, reg, name)
		require.NotNil(t, f, "family %q not gathered", name)
		for _, backend := range backends {
			for _, op := range ops {
				assert.True(t, hasLabels(f, map[string]string{"backend": backend, "operation": op}),
					"%s missing series backend=%q operation=%q", name, backend, op)
			}
		}
	}
}
