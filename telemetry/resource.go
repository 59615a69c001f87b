package telemetry

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func (m *Manager) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(m.config.ServiceName),
		semconv.ServiceVersion(m.config.ServiceVersion),
	}

	flat := flattenAttributes(m.config.ResourceAttrs, "")
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, os.ExpandEnv(flat[k])))
	}

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
}

// flattenAttributes turns {"deployment": {"environment": "prod"}} into
// {"deployment.environment": "prod"}.
func flattenAttributes(in map[string]interface{}, prefix string) map[string]string {
	out := make(map[string]string)
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[full] = v
		case map[string]interface{}:
			for nk, nv := range flattenAttributes(v, full) {
				out[nk] = nv
			}
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
