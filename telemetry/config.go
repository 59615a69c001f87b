package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config configures OpenTelemetry tracing and metrics.
type Config struct {
	Enabled        bool                   `mapstructure:"enabled"`
	ServiceName    string                 `mapstructure:"service_name"`
	ServiceVersion string                 `mapstructure:"service_version"`
	ResourceAttrs  map[string]interface{} `mapstructure:"resource_attributes"` // nested maps are flattened with dots
	Tracing        TracingConfig          `mapstructure:"tracing"`
	Metrics        MetricsConfig          `mapstructure:"metrics"`
}

// TracingConfig tracer provider settings
type TracingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Exporter string        `mapstructure:"exporter"` // stdout, none
	Sampler  SamplerConfig `mapstructure:"sampler"`
	Batch    BatchConfig   `mapstructure:"batch"`
}

// SamplerConfig Sampling configuration
type SamplerConfig struct {
	Type  string  `mapstructure:"type"`  // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"` // only used by trace_id_ratio
}

// BatchConfig batch span processor settings
type BatchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MaxQueueSize       int           `mapstructure:"max_queue_size"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
	ScheduleDelay      time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout      time.Duration `mapstructure:"export_timeout"`
}

// MetricsConfig meter provider settings
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	Exporter       string            `mapstructure:"exporter"` // stdout, none
	ExportInterval time.Duration     `mapstructure:"export_interval"`
	ExportTimeout  time.Duration     `mapstructure:"export_timeout"`
	Namespace      string            `mapstructure:"namespace"`
	Labels         map[string]string `mapstructure:"labels"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "sessionguard",
		ServiceVersion: "dev",
		Tracing: TracingConfig{
			Enabled:  true,
			Exporter: ExporterNone,
			Sampler: SamplerConfig{
				Type:  "parent_based_always_on",
				Ratio: 1.0,
			},
			Batch: BatchConfig{
				Enabled:            true,
				MaxQueueSize:       2048,
				MaxExportBatchSize: 512,
				ScheduleDelay:      5 * time.Second,
				ExportTimeout:      30 * time.Second,
			},
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			Exporter:       ExporterNone,
			ExportInterval: 60 * time.Second,
			ExportTimeout:  30 * time.Second,
			Namespace:      "sessionguard",
		},
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.ServiceName == "" {
		c.ServiceName = def.ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = def.ServiceVersion
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = def.Tracing.Exporter
	}
	if c.Tracing.Sampler.Type == "" {
		c.Tracing.Sampler = def.Tracing.Sampler
	}
	b := &c.Tracing.Batch
	if b.MaxQueueSize == 0 {
		b.MaxQueueSize = def.Tracing.Batch.MaxQueueSize
	}
	if b.MaxExportBatchSize == 0 {
		b.MaxExportBatchSize = def.Tracing.Batch.MaxExportBatchSize
	}
	if b.ScheduleDelay == 0 {
		b.ScheduleDelay = def.Tracing.Batch.ScheduleDelay
	}
	if b.ExportTimeout == 0 {
		b.ExportTimeout = def.Tracing.Batch.ExportTimeout
	}
	if c.Metrics.Exporter == "" {
		c.Metrics.Exporter = def.Metrics.Exporter
	}
	if c.Metrics.ExportInterval == 0 {
		c.Metrics.ExportInterval = def.Metrics.ExportInterval
	}
	if c.Metrics.ExportTimeout == 0 {
		c.Metrics.ExportTimeout = def.Metrics.ExportTimeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = def.Metrics.Namespace
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Tracing),
		validation.Field(&c.Metrics),
	)
}

func (c TracingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.In(ExporterStdout, ExporterNone)),
		validation.Field(&c.Sampler),
	)
}

func (c SamplerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Type, validation.In("always_on", "always_off", "trace_id_ratio", "parent_based_always_on")),
		validation.Field(&c.Ratio, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (c MetricsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.In(ExporterStdout, ExporterNone)),
		validation.Field(&c.ExportInterval, validation.When(c.Enabled && c.Exporter == ExporterStdout, validation.Min(time.Second))),
	)
}
