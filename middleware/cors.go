package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures CORSWithConfig.
type CORSConfig struct {
	AllowOrigins  []string `mapstructure:"allow_origins"`
	AllowMethods  []string `mapstructure:"allow_methods"`
	AllowHeaders  []string `mapstructure:"allow_headers"`
	ExposeHeaders []string `mapstructure:"expose_headers"`

	// AllowCredentials lets browsers send the CSRF and session cookies.
	// With a wildcard origin the request origin is echoed back instead of
	// "*", which browsers reject for credentialed requests.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int `mapstructure:"max_age"`
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-CSRF-Token", "X-XSRF-Token", "CSRF-Token",
		},
		ExposeHeaders:    []string{TraceIDHeaderDefault},
		AllowCredentials: true,
		MaxAge:           43200,
	}
}

func (c *CORSConfig) ApplyDefaults() {
	def := DefaultCORSConfig()
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = def.AllowOrigins
	}
	if len(c.AllowMethods) == 0 {
		c.AllowMethods = def.AllowMethods
	}
	if len(c.AllowHeaders) == 0 {
		c.AllowHeaders = def.AllowHeaders
	}
	if c.MaxAge == 0 {
		c.MaxAge = def.MaxAge
	}
}

func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig sets the CORS headers and answers preflight requests with
// 204. Requests from origins outside the list pass through without headers.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	cfg.ApplyDefaults()

	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowOrigin := ""
		switch {
		case wildcard && cfg.AllowCredentials && origin != "":
			allowOrigin = origin
		case wildcard:
			allowOrigin = "*"
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			allowOrigin = origin
		}

		if allowOrigin == "" && origin != "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if allowOrigin != "" {
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
