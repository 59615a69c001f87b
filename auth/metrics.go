package auth

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Metrics instruments logins, logouts and password checks.
type Metrics struct {
	config     MetricsConfig
	registered bool
	mu         sync.RWMutex

	loginsTotal         metric.Int64Counter
	loginDuration       metric.Float64Histogram
	passwordValidations metric.Int64Counter
	failedAttempts      metric.Int64Counter
	logoutsTotal        metric.Int64Counter
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

func (m *Metrics) MetricsName() string {
	return "auth"
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
	m.loginsTotal, err = meter.Int64Counter(
		"auth_logins_total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return err
	}

	m.loginDuration, err = meter.Float64Histogram(
		"auth_login_duration_seconds",
		metric.WithDescription("Login duration distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.passwordValidations, err = meter.Int64Counter(
		"auth_password_validations_total",
		metric.WithDescription("Total number of password policy checks"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return err
	}

	m.failedAttempts, err = meter.Int64Counter(
		"auth_failed_attempts_total",
		metric.WithDescription("Total number of failed authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	m.logoutsTotal, err = meter.Int64Counter(
		"auth_logouts_total",
		metric.WithDescription("Logouts by scope"),
		metric.WithUnit("{logout}"),
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

func (m *Metrics) RecordLogin(ctx context.Context, result string, duration time.Duration) {
	if !m.IsRegistered() {
		return
	}
	m.loginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	m.loginDuration.Record(ctx, duration.Seconds())
}

func (m *Metrics) RecordPasswordValidation(ctx context.Context, result string) {
	if !m.IsRegistered() {
		return
	}
	m.passwordValidations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordFailedAttempt(ctx context.Context, reason string) {
	if !m.IsRegistered() {
		return
	}
	m.failedAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordLogout records "session" or "all".
func (m *Metrics) RecordLogout(ctx context.Context, scope string) {
	if !m.IsRegistered() {
		return
	}
	m.logoutsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}
