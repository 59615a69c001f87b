package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/gin-gonic/gin"
)

// Context keys set by the JWT middleware.
const (
	ClaimsKey   = "jwt_claims"
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RolesKey    = "roles"
)

// JWTConfig configures JWTWithConfig.
type JWTConfig struct {
	Skipper func(*gin.Context) bool

	// TokenLookup is a comma separated list of source:name pairs tried in
	// order, e.g. "header:Authorization,cookie:access_token".
	TokenLookup string

	// TokenHeadName is the scheme stripped from header values.
	TokenHeadName string

	ErrorHandler func(*gin.Context, error)
}

var DefaultJWTConfig = JWTConfig{
	TokenLookup:   "header:Authorization",
	TokenHeadName: "Bearer",
	ErrorHandler:  defaultJWTErrorHandler,
}

// JWT verifies the bearer token and stores its claims on the context. It
// does not consult the revocation registry; mount Revocation after it.
func JWT(tokenManager jwt.TokenManager) gin.HandlerFunc {
	return JWTWithConfig(tokenManager, DefaultJWTConfig)
}

func JWTWithConfig(tokenManager jwt.TokenManager, config JWTConfig) gin.HandlerFunc {
	if config.TokenLookup == "" {
		config.TokenLookup = DefaultJWTConfig.TokenLookup
	}
	if config.TokenHeadName == "" {
		config.TokenHeadName = DefaultJWTConfig.TokenHeadName
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultJWTConfig.ErrorHandler
	}

	return func(c *gin.Context) {
		if config.Skipper != nil && config.Skipper(c) {
			c.Next()
			return
		}

		token, err := extractToken(c, config.TokenLookup, config.TokenHeadName)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		claims, err := tokenManager.VerifyToken(c.Request.Context(), token)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.Subject)
		c.Set(UsernameKey, claims.Username)
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

func extractToken(c *gin.Context, tokenLookup, tokenHeadName string) (string, error) {
	for _, lookup := range strings.Split(tokenLookup, ",") {
		source, name, ok := strings.Cut(strings.TrimSpace(lookup), ":")
		if !ok {
			continue
		}

		var token string
		switch source {
		case "header":
			token = c.GetHeader(name)
			if tokenHeadName != "" {
				token = strings.TrimPrefix(token, tokenHeadName+" ")
			}
		case "query":
			token = c.Query(name)
		case "cookie":
			token, _ = c.Cookie(name)
		}
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}
	return "", jwt.ErrTokenMissing
}

// JWTErrorKey maps a verification error to the reason sent to clients.
func JWTErrorKey(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMissing):
		return "TOKEN_MISSING"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, jwt.ErrTokenNotYetValid):
		return "TOKEN_NOT_YET_VALID"
	case errors.Is(err, jwt.ErrInvalidSignature):
		return "INVALID_SIGNATURE"
	default:
		return "TOKEN_INVALID"
	}
}

func defaultJWTErrorHandler(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httpx.Response{
		Success: false,
		Error:   JWTErrorKey(err),
		Message: "authentication required",
	})
}

func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func GetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func HasRole(c *gin.Context, role string) bool {
	v, exists := c.Get(RolesKey)
	if !exists {
		return false
	}
	roles, ok := v.([]string)
	return ok && slices.Contains(roles, role)
}
