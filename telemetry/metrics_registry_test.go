package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type mockMetricsProvider struct {
	name           string
	enabled        bool
	registerCalled bool
	registerError  error
	counter        metric.Int64Counter
}

func (m *mockMetricsProvider) MetricsName() string {
	return m.name
}

func (m *mockMetricsProvider) RegisterMetrics(meter metric.Meter) error {
	m.registerCalled = true
	if m.registerError != nil {
		return m.registerError
	}
	var err error
	m.counter, err = meter.Int64Counter(m.name + "_events_total")
	return err
}

func (m *mockMetricsProvider) IsMetricsEnabled() bool {
	return m.enabled
}

func TestNewMetricsRegistry(t *testing.T) {
	t.Run("nil meter provider uses global", func(t *testing.T) {
		r := NewMetricsRegistry(nil)
		assert.True(t, r.IsEnabled())
		assert.Equal(t, "sessionguard", r.namespace)
	})

	t.Run("options", func(t *testing.T) {
		l := logger.NewNopLogger()
		r := NewMetricsRegistry(noop.NewMeterProvider(),
			WithNamespace("custom"),
			WithBaseLabels([]attribute.KeyValue{attribute.String("env", "test")}),
			WithLogger(l),
			WithRegistryEnabled(false),
		)
		assert.Equal(t, "custom", r.namespace)
		assert.Equal(t, l, r.logger)
		assert.False(t, r.IsEnabled())
		require.Len(t, r.GetBaseLabels(), 1)
		assert.Equal(t, "env", string(r.GetBaseLabels()[0].Key))
	})
}

func TestMetricsRegistry_Register(t *testing.T) {
	newRegistry := func() *MetricsRegistry {
		return NewMetricsRegistry(noop.NewMeterProvider(), WithLogger(logger.NewNopLogger()))
	}

	t.Run("valid provider", func(t *testing.T) {
		r := newRegistry()
		p := &mockMetricsProvider{name: "csrf", enabled: true}

		require.NoError(t, r.Register(p))
		assert.True(t, p.registerCalled)
		assert.Equal(t, 1, r.GetProviderCount())
	})

	t.Run("nil provider", func(t *testing.T) {
		assert.Error(t, newRegistry().Register(nil))
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Error(t, newRegistry().Register(&mockMetricsProvider{enabled: true}))
	})

	t.Run("disabled provider is skipped", func(t *testing.T) {
		r := newRegistry()
		p := &mockMetricsProvider{name: "jwt", enabled: false}

		require.NoError(t, r.Register(p))
		assert.False(t, p.registerCalled)
		assert.Zero(t, r.GetProviderCount())
	})

	t.Run("disabled registry skips everything", func(t *testing.T) {
		r := NewMetricsRegistry(noop.NewMeterProvider(), WithRegistryEnabled(false))
		p := &mockMetricsProvider{name: "auth", enabled: true}

		require.NoError(t, r.Register(p))
		assert.False(t, p.registerCalled)
	})

	t.Run("duplicate name", func(t *testing.T) {
		r := newRegistry()
		require.NoError(t, r.Register(&mockMetricsProvider{name: "redis", enabled: true}))
		err := r.Register(&mockMetricsProvider{name: "redis", enabled: true})
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("register error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		err := newRegistry().Register(&mockMetricsProvider{name: "http", enabled: true, registerError: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestMetricsRegistry_RegisterAll(t *testing.T) {
	r := NewMetricsRegistry(noop.NewMeterProvider(), WithLogger(logger.NewNopLogger()))
	boom := errors.New("boom")

	err := r.RegisterAll(
		&mockMetricsProvider{name: "csrf", enabled: true},
		&mockMetricsProvider{name: "revocation", enabled: true, registerError: boom},
		&mockMetricsProvider{name: "jwt", enabled: true},
	)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, r.GetProviderCount())
	assert.Len(t, r.GetProviders(), 2)
}

func TestMetricsRegistry_GetMeter(t *testing.T) {
	r := NewMetricsRegistry(noop.NewMeterProvider())

	m1 := r.GetMeter("csrf")
	m2 := r.GetMeter("csrf")
	assert.Equal(t, m1, m2)
	assert.Len(t, r.meters, 1)
}

func TestMetricsRegistry_MeterNaming(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r := NewMetricsRegistry(mp, WithNamespace("sg"), WithLogger(logger.NewNopLogger()))

	p := &mockMetricsProvider{name: "csrf", enabled: true}
	require.NoError(t, r.Register(p))
	p.counter.Add(context.Background(), 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "sg_csrf", rm.ScopeMetrics[0].Scope.Name)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	assert.Equal(t, "csrf_events_total", rm.ScopeMetrics[0].Metrics[0].Name)
}
