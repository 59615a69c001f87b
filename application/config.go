package application

import (
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/config"
	"github.com/KOMKZ/yogan-sessionguard/di"
	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the whole service configuration. Component sections (csrf, jwt,
// revocation, redis, auth, telemetry, http_metrics, health) sit at the top level.
type Config struct {
	Server      ServerConfig                `mapstructure:"server"`
	Environment string                      `mapstructure:"environment"`
	Logger      logger.ManagerConfig        `mapstructure:"logger"`
	CORS        CORSConfig                  `mapstructure:"cors"`
	RequestLog  middleware.RequestLogConfig `mapstructure:"request_log"`
	Httpx       httpx.ErrorLoggingConfig    `mapstructure:"httpx"`

	di.Components `mapstructure:",squash"`
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CORSConfig struct {
	Enabled               bool `mapstructure:"enabled"`
	middleware.CORSConfig `mapstructure:",squash"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            gin.ReleaseMode,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Environment: "development",
		Logger:      logger.DefaultManagerConfig(),
		CORS: CORSConfig{
			Enabled:    false,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
		RequestLog: middleware.RequestLogConfig{SkipPaths: []string{"/health"}},
		Httpx:      httpx.DefaultErrorLoggingConfig(),
		Components: di.DefaultComponents(),
	}
}

// ApplyDefaults fills zero values and propagates the environment to the
// CSRF guard, which decides the Secure cookie flag from it.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Environment == "" {
		c.Environment = def.Environment
	}
	if c.CSRF.Environment == "" || c.CSRF.Environment == def.CSRF.Environment {
		c.CSRF.Environment = c.Environment
	}

	c.Logger.ApplyDefaults()
	c.CORS.ApplyDefaults()
	c.Httpx.ApplyDefaults()
	c.Components.ApplyDefaults()
}

func (c Config) Validate() error {
	return config.ValidateAll(
		c.Server,
		c.Logger,
		c.Httpx,
		c.Components,
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.Mode, validation.In(gin.DebugMode, gin.ReleaseMode, gin.TestMode)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig unmarshals the loader on top of DefaultConfig, then applies
// defaults and validates.
func LoadConfig(loader *config.Loader) (*Config, error) {
	cfg := DefaultConfig()
	if loader != nil {
		if err := loader.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
