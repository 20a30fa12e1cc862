// SPDX-License-Identifier: MIT
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func TestValidationTotal(t *testing.T) {
	c := ValidationTotal.WithLabelValues("valid")
	before := getCounterValue(t, c)
	invalid := ValidationTotal.WithLabelValues("invalid")
	invalidBefore := getCounterValue(t, invalid)

	c.Inc()
	assert.Equal(t, before+1, getCounterValue(t, c))
	assert.Equal(t, invalidBefore, getCounterValue(t, invalid), "outcomes use distinct series")
}

func TestMigrationTotalByVersion(t *testing.T) {
	v0 := MigrationTotal.WithLabelValues("v0")
	v1 := MigrationTotal.WithLabelValues("v1")
	v0Before := getCounterValue(t, v0)
	v1Before := getCounterValue(t, v1)

	v0.Inc()
	v0.Inc()
	v1.Inc()

	assert.Equal(t, v0Before+2, getCounterValue(t, v0))
	assert.Equal(t, v1Before+1, getCounterValue(t, v1))
}

func TestRegisteredInputsGauge(t *testing.T) {
	RegisteredInputs.Set(0)
	RegisteredInputs.Inc()
	RegisteredInputs.Inc()
	assert.Equal(t, 2.0, getGaugeValue(t, RegisteredInputs))
	RegisteredInputs.Dec()
	assert.Equal(t, 1.0, getGaugeValue(t, RegisteredInputs))
}

func TestConfigReloadTotal(t *testing.T) {
	for _, result := range []string{"success", "failure", "noop"} {
		c := ConfigReloadTotal.WithLabelValues(result)
		before := getCounterValue(t, c)
		c.Inc()
		assert.Equal(t, before+1, getCounterValue(t, c))
	}
}
