package health

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	// Timeout bounds the whole round of checks.
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{Timeout: 2 * time.Second}
}

func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultConfig().Timeout
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Min(time.Millisecond)),
	)
}
