package jwt

import (
	"fmt"
	"time"
)

// Config controls token signing and verification.
type Config struct {
	// Algorithm is one of HS256, HS384, HS512.
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
	Secret    string `yaml:"secret" mapstructure:"secret"`

	AccessToken AccessTokenConfig `yaml:"access_token" mapstructure:"access_token"`
	Security    SecurityConfig    `yaml:"security" mapstructure:"security"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

type AccessTokenConfig struct {
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	Audience string        `yaml:"audience" mapstructure:"audience"`
}

type SecurityConfig struct {
	// EnableJTI stamps every token with a unique id, which the revocation
	// registry uses as the blocklist key.
	EnableJTI       bool          `yaml:"enable_jti" mapstructure:"enable_jti"`
	EnableNotBefore bool          `yaml:"enable_not_before" mapstructure:"enable_not_before"`
	ClockSkew       time.Duration `yaml:"clock_skew" mapstructure:"clock_skew"`
}

// DefaultConfig has no secret; one must be configured.
func DefaultConfig() Config {
	return Config{
		Algorithm: "HS256",
		AccessToken: AccessTokenConfig{
			TTL:    2 * time.Hour,
			Issuer: "sessionguard",
		},
		Security: SecurityConfig{
			EnableJTI: true,
			ClockSkew: 30 * time.Second,
		},
	}
}

// ApplyDefaults fills zero values. EnableJTI cannot be told apart from an
// explicit false, so it is left alone; start from DefaultConfig instead.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Algorithm == "" {
		c.Algorithm = def.Algorithm
	}
	if c.AccessToken.TTL == 0 {
		c.AccessToken.TTL = def.AccessToken.TTL
	}
	if c.AccessToken.Issuer == "" {
		c.AccessToken.Issuer = def.AccessToken.Issuer
	}
	if c.Security.ClockSkew == 0 {
		c.Security.ClockSkew = def.Security.ClockSkew
	}
}

func (c *Config) Validate() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: %q", ErrAlgorithmNotSupported, c.Algorithm)
	}
	if c.Secret == "" {
		return ErrSecretEmpty
	}
	// HMAC keys shorter than the hash output weaken the signature
	if len(c.Secret) < 32 {
		return fmt.Errorf("jwt: secret must be at least 32 bytes, got %d", len(c.Secret))
	}
	if c.AccessToken.TTL <= 0 {
		return fmt.Errorf("jwt: access token ttl must be positive")
	}
	if c.Security.ClockSkew < 0 {
		return fmt.Errorf("jwt: clock skew must not be negative")
	}
	return nil
}
