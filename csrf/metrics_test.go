package csrf

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_Provider(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	assert.Equal(t, "csrf", m.MetricsName())
	assert.True(t, m.IsMetricsEnabled())
	assert.False(t, m.IsRegistered())

	require.NoError(t, m.RegisterMetrics(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, m.RegisterMetrics(noop.NewMeterProvider().Meter("test")))
	assert.True(t, m.IsRegistered())
}

func TestMetrics_UnregisteredIsNoop(t *testing.T) {
	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordIssued(context.Background(), "setup")
		NewMetrics(MetricsConfig{}).RecordValidation(context.Background(), "allow")
	})
}

func TestMetrics_RecordedByGuard(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m := NewMetrics(MetricsConfig{Enabled: true})
	require.NoError(t, m.RegisterMetrics(mp.Meter("csrf")))
	g := newTestGuard(t, nil, WithMetrics(m))

	c, _ := newTestContext(http.MethodGet, "", nil)
	_, err := g.Setup(c)
	require.NoError(t, err)

	c, _ = newTestContext(http.MethodPost, strings.Repeat("ab", 32), nil)
	assert.Error(t, g.Validate(c))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["csrf_tokens_issued_total"])
	assert.Equal(t, int64(1), totals["csrf_validations_total"])
}
