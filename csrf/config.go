package csrf

import (
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds cookie and header settings for the double-submit guard.
type Config struct {
	CookieName    string        `mapstructure:"cookie_name"`
	HeaderName    string        `mapstructure:"header_name"`
	HeaderAliases []string      `mapstructure:"header_aliases"`
	TokenBytes    int           `mapstructure:"token_bytes"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	CookiePath    string        `mapstructure:"cookie_path"`
	CookieDomain  string        `mapstructure:"cookie_domain"`

	// Environment "production" (or "prod") forces the Secure flag.
	Environment string `mapstructure:"environment"`
	// Secure forces the Secure flag in any environment.
	Secure bool `mapstructure:"secure"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		CookieName:    "csrf_token",
		HeaderName:    "X-CSRF-Token",
		HeaderAliases: []string{"X-XSRF-Token", "CSRF-Token"},
		TokenBytes:    32,
		MaxAge:        24 * time.Hour,
		CookiePath:    "/",
		Environment:   "development",
	}
}

// ApplyDefaults fills zero values from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.CookieName == "" {
		c.CookieName = def.CookieName
	}
	if c.HeaderName == "" {
		c.HeaderName = def.HeaderName
	}
	if c.HeaderAliases == nil {
		c.HeaderAliases = def.HeaderAliases
	}
	if c.TokenBytes == 0 {
		c.TokenBytes = def.TokenBytes
	}
	if c.MaxAge == 0 {
		c.MaxAge = def.MaxAge
	}
	if c.CookiePath == "" {
		c.CookiePath = def.CookiePath
	}
	if c.Environment == "" {
		c.Environment = def.Environment
	}
}

// RFC 7230 token characters, valid for both cookie and header names.
var tokenNameRe = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+$")

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CookieName, validation.Required, validation.Match(tokenNameRe)),
		validation.Field(&c.HeaderName, validation.Required, validation.Match(tokenNameRe)),
		validation.Field(&c.HeaderAliases, validation.Each(validation.Required, validation.Match(tokenNameRe))),
		// below 16 bytes the token becomes guessable
		validation.Field(&c.TokenBytes, validation.Required, validation.Min(16), validation.Max(128)),
		validation.Field(&c.MaxAge, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CookiePath, validation.Required),
	)
}

// IsProduction reports whether the environment is production-like.
func (c Config) IsProduction() bool {
	return slices.Contains([]string{"production", "prod"}, strings.ToLower(c.Environment))
}

func (c Config) secureCookie() bool {
	return c.Secure || c.IsProduction()
}

// headerNames returns the primary header followed by the aliases,
// canonicalised and without duplicates.
func (c Config) headerNames() []string {
	names := make([]string, 0, 1+len(c.HeaderAliases))
	for _, h := range append([]string{c.HeaderName}, c.HeaderAliases...) {
		h = http.CanonicalHeaderKey(h)
		if h != "" && !slices.Contains(names, h) {
			names = append(names, h)
		}
	}
	return names
}
