// Package httpx renders handler results and errors as JSON envelopes.
package httpx

import validation "github.com/go-ozzo/ozzo-validation/v4"

// ErrorLoggingConfig controls whether HandleError logs the errors it renders.
type ErrorLoggingConfig struct {
	Enable bool `mapstructure:"enable" json:"enable"`

	// IgnoreHTTPStatus lists statuses that are never logged, e.g. 401 and 403.
	IgnoreHTTPStatus []int `mapstructure:"ignore_http_status" json:"ignore_http_status"`

	// FullErrorChain adds the wrapped cause chain to the log entry.
	FullErrorChain bool `mapstructure:"full_error_chain" json:"full_error_chain"`

	// LogLevel is error, warn or info.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

func DefaultErrorLoggingConfig() ErrorLoggingConfig {
	return ErrorLoggingConfig{
		Enable:           false,
		IgnoreHTTPStatus: []int{},
		FullErrorChain:   true,
		LogLevel:         "error",
	}
}

func (c *ErrorLoggingConfig) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "error"
	}
}

func (c ErrorLoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("error", "warn", "info")),
	)
}
