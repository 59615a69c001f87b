package revocation

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config selects and tunes the revocation store.
type Config struct {
	Storage        string        `mapstructure:"storage"`
	RedisKeyPrefix string        `mapstructure:"redis_key_prefix"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	// UserMarkerTTL caps marker retention. 0 keeps markers until Clear.
	UserMarkerTTL time.Duration `mapstructure:"user_marker_ttl"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

func DefaultConfig() Config {
	return Config{
		Storage:        StorageMemory,
		RedisKeyPrefix: "sessionguard:revocation:",
		SweepInterval:  10 * time.Minute,
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Storage == "" {
		c.Storage = def.Storage
	}
	if c.RedisKeyPrefix == "" {
		c.RedisKeyPrefix = def.RedisKeyPrefix
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = def.SweepInterval
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Storage, validation.Required, validation.In(StorageMemory, StorageRedis)),
		validation.Field(&c.RedisKeyPrefix, validation.When(c.Storage == StorageRedis, validation.Required)),
		validation.Field(&c.SweepInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.UserMarkerTTL, validation.Min(time.Duration(0))),
	)
}
