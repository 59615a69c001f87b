package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Secret: testSecret}
	cfg.ApplyDefaults()

	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 2*time.Hour, cfg.AccessToken.TTL)
	assert.Equal(t, "sessionguard", cfg.AccessToken.Issuer)
	assert.Equal(t, 30*time.Second, cfg.Security.ClockSkew)
	assert.False(t, cfg.Security.EnableJTI)
	assert.True(t, DefaultConfig().Security.EnableJTI)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errIs   error
	}{
		{"valid", func(*Config) {}, false, nil},
		{"rs256 unsupported", func(c *Config) { c.Algorithm = "RS256" }, true, ErrAlgorithmNotSupported},
		{"empty secret", func(c *Config) { c.Secret = "" }, true, ErrSecretEmpty},
		{"short secret", func(c *Config) { c.Secret = "short" }, true, nil},
		{"zero ttl", func(c *Config) { c.AccessToken.TTL = 0 }, true, nil},
		{"negative skew", func(c *Config) { c.Security.ClockSkew = -time.Second }, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}
