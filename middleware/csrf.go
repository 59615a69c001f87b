package middleware

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/gin-gonic/gin"
)

// CSRFConfig configures CSRFValidateWithConfig.
type CSRFConfig struct {
	// Skipper exempts matching requests, e.g. webhook endpoints.
	Skipper func(*gin.Context) bool

	// ErrorHandler renders a denial. The default writes a 403 envelope
	// whose error field is the reason code.
	ErrorHandler func(*gin.Context, error)
}

var DefaultCSRFConfig = CSRFConfig{
	ErrorHandler: defaultCSRFErrorHandler,
}

// CSRFSetup issues a token cookie to requests that do not carry one. It runs
// for every method, so it must be mounted ahead of CSRFValidate.
func CSRFSetup(guard *csrf.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := guard.Setup(c); err != nil {
			httpx.AbortWithError(c, csrf.ErrTokenGeneration)
			return
		}
		c.Next()
	}
}

// CSRFValidate rejects unsafe requests whose header token does not match the
// cookie token.
func CSRFValidate(guard *csrf.Guard) gin.HandlerFunc {
	return CSRFValidateWithConfig(guard, DefaultCSRFConfig)
}

func CSRFValidateWithConfig(guard *csrf.Guard, config CSRFConfig) gin.HandlerFunc {
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultCSRFConfig.ErrorHandler
	}

	return func(c *gin.Context) {
		if config.Skipper != nil && config.Skipper(c) {
			c.Next()
			return
		}
		if err := guard.Validate(c); err != nil {
			config.ErrorHandler(c, err)
			return
		}
		c.Next()
	}
}

func defaultCSRFErrorHandler(c *gin.Context, err error) {
	var le *errcode.LayeredError
	if !errors.As(err, &le) {
		le = csrf.ErrTokenInvalid
	}
	httpx.AbortWithError(c, le)
}

// CSRFProvide is the handler behind GET /csrf-token. It returns the token
// already bound to the request and never rotates it.
func CSRFProvide(guard *csrf.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := guard.Setup(c)
		if err != nil {
			httpx.AbortWithError(c, csrf.ErrTokenGeneration)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"csrfToken": token,
			"message":   "CSRF token generated",
		})
	}
}
