// Package csrf implements stateless double-submit-cookie CSRF protection.
//
// The token lives in an HttpOnly cookie and must be echoed byte-for-byte in a
// request header on state-changing requests. No server-side state is kept.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextKey is where Setup stores the effective token for the current request.
const ContextKey = "csrf_token"

// safeMethods never change state and bypass validation.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// Guard issues and validates CSRF tokens.
type Guard struct {
	config  Config
	headers []string
	logger  *logger.CtxZapLogger
	metrics *Metrics
	random  io.Reader
}

// Option configures a Guard.
type Option func(*Guard)

func WithLogger(l *logger.CtxZapLogger) Option {
	return func(g *Guard) {
		g.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithRandom replaces crypto/rand, for tests only.
func WithRandom(r io.Reader) Option {
	return func(g *Guard) {
		g.random = r
	}
}

// NewGuard applies defaults to cfg and validates it.
func NewGuard(cfg Config, opts ...Option) (*Guard, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid csrf config: %w", err)
	}

	g := &Guard{
		config:  cfg,
		headers: cfg.headerNames(),
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.GetLogger("csrf")
	}
	return g, nil
}

func (g *Guard) Config() Config {
	return g.config
}

// NewToken generates a fresh token without touching any cookie.
func (g *Guard) NewToken() (string, error) {
	token, err := generateToken(g.random, g.config.TokenBytes)
	if err != nil {
		return "", ErrTokenGeneration.Wrap(err)
	}
	return token, nil
}

// Setup makes sure the request carries a token. A non-empty cookie is reused
// as is; otherwise a new token is issued via Set-Cookie. The effective token
// is stored on the context under ContextKey and returned.
func (g *Guard) Setup(c *gin.Context) (string, error) {
	if token := g.Token(c); token != "" {
		c.Set(ContextKey, token)
		return token, nil
	}

	token, err := g.NewToken()
	if err != nil {
		g.logger.ErrorCtx(c.Request.Context(), "csrf token generation failed", zap.Error(err))
		return "", err
	}
	g.setCookie(c, token)
	g.metrics.RecordIssued(c.Request.Context(), "setup")
	g.logger.DebugCtx(c.Request.Context(), "csrf token issued", zap.String("path", c.Request.URL.Path))
	return token, nil
}

// Token returns the token for this request: whatever Setup, Refresh or Clear
// placed on the context, else the cookie value, else "".
func (g *Guard) Token(c *gin.Context) string {
	if v, ok := c.Get(ContextKey); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	token, err := c.Cookie(g.config.CookieName)
	if err != nil {
		return ""
	}
	return token
}

// HeaderToken returns the first non-empty value among the configured headers.
func (g *Guard) HeaderToken(r *http.Request) string {
	for _, name := range g.headers {
		if v := r.Header.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Check is the pure validation decision. It returns nil to allow, otherwise
// ErrTokenMissing, ErrHeaderMissing or ErrTokenInvalid.
func (g *Guard) Check(method, cookieToken, headerToken string) error {
	if IsSafeMethod(method) {
		return nil
	}
	if cookieToken == "" {
		return ErrTokenMissing
	}
	if headerToken == "" {
		return ErrHeaderMissing
	}
	if len(cookieToken) != len(headerToken) {
		return ErrTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
		return ErrTokenInvalid
	}
	return nil
}

// Validate checks the request cookie (not a token freshly issued by Setup)
// against the request header.
func (g *Guard) Validate(c *gin.Context) error {
	ctx := c.Request.Context()
	if IsSafeMethod(c.Request.Method) {
		g.metrics.RecordValidation(ctx, "bypass")
		return nil
	}

	cookieToken, _ := c.Cookie(g.config.CookieName)
	err := g.Check(c.Request.Method, cookieToken, g.HeaderToken(c.Request))
	if err != nil {
		reason := Reason(err)
		g.metrics.RecordValidation(ctx, reason)
		g.logger.WarnCtx(ctx, "csrf validation failed",
			zap.String("reason", reason),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()))
		return err
	}

	g.metrics.RecordValidation(ctx, "allow")
	return nil
}

// Clear expires the cookie immediately.
func (g *Guard) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, g.cookie("", -1))
	c.Set(ContextKey, "")
}

// Refresh issues a new token regardless of the current one.
func (g *Guard) Refresh(c *gin.Context) (string, error) {
	token, err := g.NewToken()
	if err != nil {
		g.logger.ErrorCtx(c.Request.Context(), "csrf token refresh failed", zap.Error(err))
		return "", err
	}
	g.setCookie(c, token)
	g.metrics.RecordIssued(c.Request.Context(), "refresh")
	return token, nil
}

func (g *Guard) setCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, g.cookie(token, int(g.config.MaxAge.Seconds())))
	c.Set(ContextKey, token)
}

func (g *Guard) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     g.config.CookieName,
		Value:    value,
		Path:     g.config.CookiePath,
		Domain:   g.config.CookieDomain,
		MaxAge:   maxAge,
		Secure:   g.config.secureCookie(),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// IsSafeMethod reports whether method bypasses validation. Any method not in
// the safe list, including unknown ones, is validated.
func IsSafeMethod(method string) bool {
	return safeMethods[strings.ToUpper(method)]
}
