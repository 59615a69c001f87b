package revocation

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Metrics instruments the registry.
type Metrics struct {
	config     MetricsConfig
	registered bool
	mu         sync.RWMutex

	tokensBlocked    metric.Int64Counter
	usersInvalidated metric.Int64Counter
	checks           metric.Int64Counter
	swept            metric.Int64Counter
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

func (m *Metrics) MetricsName() string {
	return "revocation"
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
	m.tokensBlocked, err = meter.Int64Counter(
		"revocation_tokens_blocked_total",
		metric.WithDescription("Block calls by result"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return err
	}

	m.usersInvalidated, err = meter.Int64Counter(
		"revocation_users_invalidated_total",
		metric.WithDescription("Total number of user invalidations"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return err
	}

	m.checks, err = meter.Int64Counter(
		"revocation_checks_total",
		metric.WithDescription("Revocation checks by result"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.swept, err = meter.Int64Counter(
		"revocation_entries_swept_total",
		metric.WithDescription("Expired entries removed by the sweeper"),
		metric.WithUnit("{entry}"),
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

// RecordBlocked records a Block call: "blocked", "expired" or "rejected".
func (m *Metrics) RecordBlocked(ctx context.Context, result string) {
	if !m.IsRegistered() {
		return
	}
	m.tokensBlocked.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordInvalidated(ctx context.Context) {
	if !m.IsRegistered() {
		return
	}
	m.usersInvalidated.Add(ctx, 1)
}

// RecordCheck records "allow" or a denial key.
func (m *Metrics) RecordCheck(ctx context.Context, result string) {
	if !m.IsRegistered() {
		return
	}
	m.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordSwept(ctx context.Context, n int) {
	if !m.IsRegistered() || n == 0 {
		return
	}
	m.swept.Add(ctx, int64(n))
}
