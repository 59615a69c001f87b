// Package telemetry owns the OpenTelemetry tracer and meter providers and the
// registry through which components attach their instruments.
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	otelTrace "go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manager starts and stops the providers and hands out the MetricsRegistry.
type Manager struct {
	config  Config
	logger  *logger.CtxZapLogger
	writer  io.Writer
	readers []sdkmetric.Reader

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *MetricsRegistry
	setGlobal      bool
	mu             sync.RWMutex
}

type ManagerOption func(*Manager)

// WithExportWriter redirects the stdout exporters.
func WithExportWriter(w io.Writer) ManagerOption {
	return func(m *Manager) {
		m.writer = w
	}
}

// WithMetricReader attaches an extra reader, typically a ManualReader in tests.
func WithMetricReader(r sdkmetric.Reader) ManagerOption {
	return func(m *Manager) {
		m.readers = append(m.readers, r)
	}
}

// WithGlobalProviders installs the providers as the otel globals on Start.
func WithGlobalProviders() ManagerOption {
	return func(m *Manager) {
		m.setGlobal = true
	}
}

func NewManager(config Config, log *logger.CtxZapLogger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	m := &Manager{
		config: config,
		logger: log,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start builds the providers. With telemetry disabled it only prepares a
// registry backed by the noop meter provider.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		m.registry = NewMetricsRegistry(noop.NewMeterProvider(),
			WithLogger(m.logger), WithRegistryEnabled(false))
		m.logger.InfoCtx(ctx, "Telemetry disabled, skipping initialization")
		return nil
	}

	res, err := m.createResource(ctx)
	if err != nil {
		return err
	}

	if m.config.Tracing.Enabled {
		tp, err := m.createTracerProvider(res)
		if err != nil {
			return err
		}
		m.tracerProvider = tp
	}

	var mp metric.MeterProvider = noop.NewMeterProvider()
	if m.config.Metrics.Enabled {
		smp, err := m.createMeterProvider(res)
		if err != nil {
			return err
		}
		m.meterProvider = smp
		mp = smp
	}

	m.registry = NewMetricsRegistry(mp,
		WithLogger(m.logger),
		WithNamespace(m.config.Metrics.Namespace),
		WithBaseLabels(m.baseLabels()),
		WithRegistryEnabled(m.config.Metrics.Enabled),
	)

	if m.setGlobal {
		if m.tracerProvider != nil {
			otel.SetTracerProvider(m.tracerProvider)
		}
		if m.meterProvider != nil {
			otel.SetMeterProvider(m.meterProvider)
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	m.logger.InfoCtx(ctx, "Telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.Bool("tracing", m.tracerProvider != nil),
		zap.Bool("metrics", m.meterProvider != nil),
	)
	return nil
}

// Shutdown flushes and stops both providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.tracerProvider != nil {
		errs = append(errs, shutdownTracer(ctx, m.tracerProvider))
		m.tracerProvider = nil
	}
	if m.meterProvider != nil {
		errs = append(errs, shutdownMeter(ctx, m.meterProvider))
		m.meterProvider = nil
	}
	return errors.Join(errs...)
}

// TracerProvider returns the SDK provider, or a noop one when tracing is off.
func (m *Manager) TracerProvider() otelTrace.TracerProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tracerProvider == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tracerProvider
}

// MeterProvider returns the SDK provider, or a noop one when metrics are off.
func (m *Manager) MeterProvider() metric.MeterProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.meterProvider == nil {
		return noop.NewMeterProvider()
	}
	return m.meterProvider
}

// GetTracer obtain tracer
func (m *Manager) GetTracer(name string) otelTrace.Tracer {
	return m.TracerProvider().Tracer(name)
}

// Registry returns the metrics registry. It is nil before Start.
func (m *Manager) Registry() *MetricsRegistry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry
}

func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

func (m *Manager) IsTracingEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracerProvider != nil
}

func (m *Manager) GetConfig() Config {
	return m.config
}
