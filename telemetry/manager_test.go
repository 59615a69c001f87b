package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func enabledConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "sessionguard-test"
	return cfg
}

func TestNewManager(t *testing.T) {
	m := NewManager(Config{}, nil)
	require.NotNil(t, m)
	assert.NotNil(t, m.logger)
	assert.Nil(t, m.Registry())
	assert.False(t, m.IsEnabled())
}

func TestManager_Start_Disabled(t *testing.T) {
	m := NewManager(DefaultConfig(), logger.NewNopLogger())
	require.NoError(t, m.Start(context.Background()))

	assert.False(t, m.IsTracingEnabled())
	require.NotNil(t, m.Registry())
	assert.False(t, m.Registry().IsEnabled())
	assert.NotNil(t, m.MeterProvider())
	assert.NotNil(t, m.GetTracer("test"))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_Start_Enabled(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m := NewManager(enabledConfig(), logger.NewNopLogger(), WithMetricReader(reader))
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown(context.Background())

	assert.True(t, m.IsTracingEnabled())
	require.NotNil(t, m.Registry())

	p := &mockMetricsProvider{name: "revocation", enabled: true}
	require.NoError(t, m.Registry().Register(p))
	p.counter.Add(context.Background(), 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "sessionguard_revocation", rm.ScopeMetrics[0].Scope.Name)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestManager_SpansCarryTraceID(t *testing.T) {
	m := NewManager(enabledConfig(), logger.NewNopLogger())
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown(context.Background())

	_, span := m.GetTracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().TraceID().IsValid())
}

func TestManager_StdoutExporters(t *testing.T) {
	var buf bytes.Buffer
	cfg := enabledConfig()
	cfg.Tracing.Exporter = ExporterStdout
	cfg.Tracing.Batch.Enabled = false
	cfg.Tracing.Sampler.Type = "always_on"
	cfg.Metrics.Exporter = ExporterStdout

	m := NewManager(cfg, logger.NewNopLogger(), WithExportWriter(&buf))
	require.NoError(t, m.Start(context.Background()))

	_, span := m.GetTracer("test").Start(context.Background(), "exported-span")
	span.End()

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "exported-span")
	assert.False(t, m.IsTracingEnabled())
}

func TestManager_MetricsDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Metrics.Enabled = false

	m := NewManager(cfg, logger.NewNopLogger())
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown(context.Background())

	p := &mockMetricsProvider{name: "auth", enabled: true}
	require.NoError(t, m.Registry().Register(p))
	assert.False(t, p.registerCalled)
}

func TestFlattenAttributes(t *testing.T) {
	got := flattenAttributes(map[string]interface{}{
		"team": "identity",
		"deployment": map[string]interface{}{
			"environment": "prod",
			"replicas":    3,
		},
	}, "")

	assert.Equal(t, map[string]string{
		"team":                   "identity",
		"deployment.environment": "prod",
		"deployment.replicas":    "3",
	}, got)
}
