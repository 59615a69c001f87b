package middleware

import (
	"errors"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"github.com/gin-gonic/gin"
)

// RevocationConfig configures RevocationWithConfig.
type RevocationConfig struct {
	Skipper      func(*gin.Context) bool
	ErrorHandler func(*gin.Context, error)
}

var DefaultRevocationConfig = RevocationConfig{
	ErrorHandler: defaultRevocationErrorHandler,
}

// Revocation denies requests whose verified token has been revoked. It reads
// the claims stored by JWT and fails closed when there are none.
func Revocation(registry *revocation.Registry) gin.HandlerFunc {
	return RevocationWithConfig(registry, DefaultRevocationConfig)
}

func RevocationWithConfig(registry *revocation.Registry, config RevocationConfig) gin.HandlerFunc {
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultRevocationConfig.ErrorHandler
	}

	return func(c *gin.Context) {
		if config.Skipper != nil && config.Skipper(c) {
			c.Next()
			return
		}

		claims, ok := GetClaims(c)
		if !ok {
			config.ErrorHandler(c, revocation.ErrInvalidClaims)
			return
		}
		if err := registry.Check(c.Request.Context(), RevocationClaims(claims)); err != nil {
			config.ErrorHandler(c, err)
			return
		}
		c.Next()
	}
}

// RevocationClaims converts verified JWT claims into the registry's view.
func RevocationClaims(claims *jwt.Claims) *revocation.Claims {
	if claims == nil {
		return nil
	}
	return &revocation.Claims{
		TokenID:   claims.JTI,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
		Token:     claims.Token,
	}
}

func defaultRevocationErrorHandler(c *gin.Context, err error) {
	var le *errcode.LayeredError
	if !errors.As(err, &le) {
		le = revocation.ErrStoreUnavailable
	}
	httpx.AbortWithError(c, le)
}
