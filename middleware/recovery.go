package middleware

import (
	"runtime/debug"

	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery replaces gin.Recovery: the panic and its stack go to the log and
// the client gets a plain 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorCtx(c.Request.Context(), "http", "panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.String("stack", string(debug.Stack())),
				)
				httpx.AbortWithError(c, httpx.ErrInternal)
			}
		}()
		c.Next()
	}
}
