package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// createTracerProvider builds the TracerProvider. A "none" exporter still
// yields a provider so spans carry valid trace ids for log correlation.
func (m *Manager) createTracerProvider(res *resource.Resource) (*trace.TracerProvider, error) {
	cfg := m.config.Tracing

	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(m.createSampler()),
	}

	if cfg.Exporter == ExporterStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(m.writer))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter failed: %w", err)
		}
		if cfg.Batch.Enabled {
			opts = append(opts, trace.WithBatcher(exporter,
				trace.WithMaxQueueSize(cfg.Batch.MaxQueueSize),
				trace.WithMaxExportBatchSize(cfg.Batch.MaxExportBatchSize),
				trace.WithBatchTimeout(cfg.Batch.ScheduleDelay),
				trace.WithExportTimeout(cfg.Batch.ExportTimeout),
			))
		} else {
			opts = append(opts, trace.WithSyncer(exporter))
		}
	}

	return trace.NewTracerProvider(opts...), nil
}

func (m *Manager) createSampler() trace.Sampler {
	s := m.config.Tracing.Sampler
	switch s.Type {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "trace_id_ratio":
		return trace.TraceIDRatioBased(s.Ratio)
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

func shutdownTracer(ctx context.Context, tp *trace.TracerProvider) error {
	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider failed: %w", err)
	}
	return nil
}
