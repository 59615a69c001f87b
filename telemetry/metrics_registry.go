package telemetry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsProvider is implemented by every component that owns instruments
// (csrf, revocation, jwt, auth, redis, http).
type MetricsProvider interface {
	// MetricsName is a short lowercase group name used for the Meter.
	MetricsName() string
	// RegisterMetrics creates the component's instruments on meter.
	RegisterMetrics(meter metric.Meter) error
	IsMetricsEnabled() bool
}

// MetricsRegistry hands each provider a dedicated Meter and remembers who
// registered.
type MetricsRegistry struct {
	meterProvider metric.MeterProvider
	meters        map[string]metric.Meter
	providers     []MetricsProvider
	baseLabels    []attribute.KeyValue
	namespace     string
	enabled       bool
	logger        *logger.CtxZapLogger
	mu            sync.RWMutex
}

type MetricsRegistryOption func(*MetricsRegistry)

func WithNamespace(namespace string) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.namespace = namespace
	}
}

func WithBaseLabels(labels []attribute.KeyValue) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.baseLabels = labels
	}
}

func WithLogger(l *logger.CtxZapLogger) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.logger = l
	}
}

func WithRegistryEnabled(enabled bool) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.enabled = enabled
	}
}

// NewMetricsRegistry creates a registry. A nil provider falls back to the
// global MeterProvider.
func NewMetricsRegistry(mp metric.MeterProvider, opts ...MetricsRegistryOption) *MetricsRegistry {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	r := &MetricsRegistry{
		meterProvider: mp,
		meters:        make(map[string]metric.Meter),
		namespace:     "sessionguard",
		enabled:       true,
		logger:        logger.GetLogger("telemetry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates the provider's Meter and calls RegisterMetrics. Disabled
// providers and a disabled registry are skipped without error.
func (r *MetricsRegistry) Register(provider MetricsProvider) error {
	if provider == nil {
		return errors.New("metrics provider is nil")
	}
	if !r.IsEnabled() {
		return nil
	}
	if !provider.IsMetricsEnabled() {
		r.logger.Debug("metrics disabled for provider", zap.String("provider", provider.MetricsName()))
		return nil
	}

	name := provider.MetricsName()
	if name == "" {
		return errors.New("metrics provider name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.providers {
		if p.MetricsName() == name {
			return fmt.Errorf("metrics provider %q already registered", name)
		}
	}

	if err := provider.RegisterMetrics(r.getMeterLocked(name)); err != nil {
		return fmt.Errorf("register metrics for %q failed: %w", name, err)
	}

	r.providers = append(r.providers, provider)
	r.logger.Debug("metrics provider registered", zap.String("provider", name))
	return nil
}

// RegisterAll registers every provider and joins the failures.
func (r *MetricsRegistry) RegisterAll(providers ...MetricsProvider) error {
	var errs []error
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetMeter returns the Meter named {namespace}_{name}.
func (r *MetricsRegistry) GetMeter(name string) metric.Meter {
	r.mu.RLock()
	if meter, ok := r.meters[name]; ok {
		r.mu.RUnlock()
		return meter
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getMeterLocked(name)
}

func (r *MetricsRegistry) getMeterLocked(name string) metric.Meter {
	if meter, ok := r.meters[name]; ok {
		return meter
	}

	meterName := name
	if r.namespace != "" {
		meterName = r.namespace + "_" + name
	}

	meter := r.meterProvider.Meter(meterName, metric.WithInstrumentationAttributes(r.baseLabels...))
	r.meters[name] = meter
	return meter
}

func (r *MetricsRegistry) GetBaseLabels() []attribute.KeyValue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]attribute.KeyValue{}, r.baseLabels...)
}

func (r *MetricsRegistry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

func (r *MetricsRegistry) GetProviders() []MetricsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MetricsProvider{}, r.providers...)
}

func (r *MetricsRegistry) GetProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
