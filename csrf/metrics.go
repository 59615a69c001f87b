package csrf

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsConfig toggles CSRF instrumentation.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Metrics counts issued tokens and validation outcomes.
type Metrics struct {
	config     MetricsConfig
	registered bool
	mu         sync.RWMutex

	tokensIssued metric.Int64Counter
	validations  metric.Int64Counter
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

func (m *Metrics) MetricsName() string {
	return "csrf"
}

func (m *Metrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

// RegisterMetrics creates the instruments. Calling it twice is a no-op.
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	m.tokensIssued, err = meter.Int64Counter(
		"csrf_tokens_issued_total",
		metric.WithDescription("Total number of CSRF tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return err
	}

	m.validations, err = meter.Int64Counter(
		"csrf_validations_total",
		metric.WithDescription("CSRF validations by result"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

func (m *Metrics) IsRegistered() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

// RecordIssued records a new token; source is "setup" or "refresh".
func (m *Metrics) RecordIssued(ctx context.Context, source string) {
	if !m.IsRegistered() {
		return
	}
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordValidation records "allow", "bypass" or a reason code.
func (m *Metrics) RecordValidation(ctx context.Context, result string) {
	if !m.IsRegistered() {
		return
	}
	m.validations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
