package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceID_Generated(t *testing.T) {
	cfg := DefaultTraceConfig()
	cfg.Generator = func() string { return "trace-1" }

	engine := gin.New()
	engine.Use(TraceID(cfg))
	engine.GET("/test", func(c *gin.Context) {
		assert.Equal(t, "trace-1", GetTraceID(c))
		assert.Equal(t, "trace-1", logger.TraceIDFromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, "trace-1", w.Header().Get(TraceIDHeaderDefault))
}

func TestTraceID_FromHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(TraceID(DefaultTraceConfig()))
	engine.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TraceIDHeaderDefault, "incoming-id")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "incoming-id", w.Body.String())
	assert.Equal(t, "incoming-id", w.Header().Get(TraceIDHeaderDefault))
}

func TestTraceID_PrefersSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(t.Context()) }()

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	engine.Use(TraceID(TraceConfig{EnableResponseHeader: false}))
	engine.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TraceIDHeaderDefault, "ignored")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 32)
	assert.NotEqual(t, "ignored", w.Body.String())
	assert.Empty(t, w.Header().Get(TraceIDHeaderDefault))
}
