package httpx

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Common errors rendered by this package.
var (
	ErrBadRequest = errcode.Register(errcode.New(
		errcode.ModuleCommon, 2, "common", "BAD_REQUEST", "request body could not be parsed", http.StatusBadRequest))
	ErrInternal = errcode.Register(errcode.New(
		errcode.ModuleCommon, 3, "common", "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError))
	ErrRouteNotFound = errcode.Register(errcode.New(
		errcode.ModuleCommon, 4, "common", "NOT_FOUND", "route not found", http.StatusNotFound))
	ErrMethodNotAllowed = errcode.Register(errcode.New(
		errcode.ModuleCommon, 5, "common", "METHOD_NOT_ALLOWED", "method not allowed", http.StatusMethodNotAllowed))
)

// Response is the JSON envelope of every endpoint. Error holds the stable
// machine-readable key on failure.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OkJson(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OkMessage responds 200 with a message and no data.
func OkMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

// AbortWithError renders a layered error and stops the handler chain.
func AbortWithError(c *gin.Context, err *errcode.LayeredError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), errorResponse(err))
}

func errorResponse(err *errcode.LayeredError) Response {
	resp := Response{
		Success: false,
		Error:   err.MsgKey(),
		Message: err.Message(),
	}
	if len(err.Data()) > 0 {
		resp.Data = err.Data()
	}
	return resp
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithError(c, ErrRouteNotFound.WithMsgf("route not found: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithError(c, ErrMethodNotAllowed.WithMsgf("method not allowed: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

// HandleError renders err. Layered errors keep their status and key; any
// other error becomes a 500 that does not leak the cause.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	ctx := c.Request.Context()
	cfg := getErrorLoggingConfig(c)

	var layeredErr *errcode.LayeredError
	if !errors.As(err, &layeredErr) {
		if cfg.Enable {
			logger.ErrorCtx(ctx, "httpx", "unhandled error", zap.Error(err))
		}
		AbortWithError(c, ErrInternal)
		return
	}

	if shouldLogError(cfg, layeredErr) {
		fields := []zap.Field{
			zap.Int("error_code", layeredErr.Code()),
			zap.String("error_key", layeredErr.MsgKey()),
			zap.String("error_msg", layeredErr.Message()),
		}
		if cfg.FullErrorChain {
			fields = append(fields, zap.String("error_chain", layeredErr.String()), zap.Error(err))
		}

		switch cfg.LogLevel {
		case "warn":
			logger.WarnCtx(ctx, "httpx", "request failed", fields...)
		case "info":
			logger.InfoCtx(ctx, "httpx", "request failed", fields...)
		default:
			logger.ErrorCtx(ctx, "httpx", "request failed", fields...)
		}
	}

	AbortWithError(c, layeredErr)
}

func shouldLogError(cfg errorLoggingConfigInternal, err *errcode.LayeredError) bool {
	if !cfg.Enable {
		return false
	}
	return !cfg.IgnoreStatusMap[err.HTTPStatus()]
}
