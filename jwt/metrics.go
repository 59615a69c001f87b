package jwt

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Metrics instruments token generation and verification.
type Metrics struct {
	config     MetricsConfig
	registered bool
	mu         sync.RWMutex

	tokensGenerated      metric.Int64Counter
	tokensVerified       metric.Int64Counter
	verificationDuration metric.Float64Histogram
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

func (m *Metrics) MetricsName() string {
	return "jwt"
}

func (m *Metrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	m.tokensGenerated, err = meter.Int64Counter(
		"jwt_tokens_generated_total",
		metric.WithDescription("Total number of JWT tokens generated"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return err
	}

	m.tokensVerified, err = meter.Int64Counter(
		"jwt_tokens_verified_total",
		metric.WithDescription("Total number of JWT tokens verified"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return err
	}

	m.verificationDuration, err = meter.Float64Histogram(
		"jwt_verification_duration_seconds",
		metric.WithDescription("JWT verification duration distribution"),
		metric.WithUnit("s"),
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

func (m *Metrics) RecordGenerated(ctx context.Context) {
	if !m.IsRegistered() {
		return
	}
	m.tokensGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", "access")))
}

func (m *Metrics) RecordVerified(ctx context.Context, result string, duration time.Duration) {
	if !m.IsRegistered() {
		return
	}
	m.tokensVerified.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	m.verificationDuration.Record(ctx, duration.Seconds())
}
