package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// createMeterProvider builds the MeterProvider. Readers injected through
// WithMetricReader are attached in addition to the configured exporter.
func (m *Manager) createMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	cfg := m.config.Metrics

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Exporter == ExporterStdout {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(m.writer))
		if err != nil {
			return nil, fmt.Errorf("create stdout metrics exporter failed: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(cfg.ExportInterval),
			sdkmetric.WithTimeout(cfg.ExportTimeout),
		)))
	}

	for _, r := range m.readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// baseLabels converts the configured global labels into attributes.
func (m *Manager) baseLabels() []attribute.KeyValue {
	labels := make([]attribute.KeyValue, 0, len(m.config.Metrics.Labels))
	for k, v := range m.config.Metrics.Labels {
		labels = append(labels, attribute.String(k, v))
	}
	return labels
}

func shutdownMeter(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	if err := mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider failed: %w", err)
	}
	return nil
}
