package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{CookieName: "xsrf", HeaderAliases: []string{}, MaxAge: time.Hour}
	cfg.ApplyDefaults()

	assert.Equal(t, "xsrf", cfg.CookieName)
	assert.Empty(t, cfg.HeaderAliases)
	assert.Equal(t, time.Hour, cfg.MaxAge)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad cookie name", func(c *Config) { c.CookieName = "csrf token" }, true},
		{"bad header alias", func(c *Config) { c.HeaderAliases = []string{"ok", "bad:name"} }, true},
		{"token too short", func(c *Config) { c.TokenBytes = 8 }, true},
		{"max age too small", func(c *Config) { c.MaxAge = time.Millisecond }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestConfig_HeaderNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeaderAliases = append(cfg.HeaderAliases, "x-csrf-token")

	assert.Equal(t, []string{"X-Csrf-Token", "X-Xsrf-Token", "Csrf-Token"}, cfg.headerNames())
}

func TestNewGuard_InvalidConfig(t *testing.T) {
	_, err := NewGuard(Config{TokenBytes: 4})
	assert.Error(t, err)
}
