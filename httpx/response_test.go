package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTeapot = errcode.New(99, 1, "test", "TEAPOT", "short and stout", http.StatusTeapot)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestOkJson(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) { OkJson(c, gin.H{"n": 1}) })

	w := serve(engine, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"n": float64(1)}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestOkMessage(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) { OkMessage(c, "done") })

	body := decode(t, serve(engine, http.MethodGet, "/"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.NotContains(t, body, "data")
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantMsg    string
	}{
		{"layered", errTeapot, http.StatusTeapot, "TEAPOT", "short and stout"},
		{"wrapped layered", fmt.Errorf("outer: %w", errTeapot.WithMsg("custom")), http.StatusTeapot, "TEAPOT", "custom"},
		{"plain error", errors.New("db password is hunter2"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(ErrorLoggingMiddleware(ErrorLoggingConfig{Enable: true, LogLevel: "warn"}))
			engine.GET("/", func(c *gin.Context) { HandleError(c, tt.err) })

			w := serve(engine, http.MethodGet, "/")
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantKey, body["error"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestHandleError_Data(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) { HandleError(c, errTeapot.WithData("field", "x")) })

	body := decode(t, serve(engine, http.MethodGet, "/"))
	assert.Equal(t, map[string]any{"field": "x"}, body["data"])
}

func TestHandleError_Nil(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		HandleError(c, nil)
		c.String(http.StatusOK, "untouched")
	})

	w := serve(engine, http.MethodGet, "/")
	assert.Equal(t, "untouched", w.Body.String())
}

func TestNoRouteAndNoMethod(t *testing.T) {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(NoRouteHandler())
	engine.NoMethod(NoMethodHandler())
	engine.GET("/only-get", func(c *gin.Context) {})

	w := serve(engine, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["error"])

	w = serve(engine, http.MethodPost, "/only-get")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decode(t, w)["error"])
}

func TestShouldLogError(t *testing.T) {
	cfg := errorLoggingConfigInternal{Enable: true, IgnoreStatusMap: map[int]bool{http.StatusTeapot: true}}
	assert.False(t, shouldLogError(cfg, errTeapot))
	assert.True(t, shouldLogError(cfg, ErrInternal))

	cfg.Enable = false
	assert.False(t, shouldLogError(cfg, ErrInternal))
}

func TestErrorLoggingConfig(t *testing.T) {
	var cfg ErrorLoggingConfig
	cfg.ApplyDefaults()
	assert.Equal(t, "error", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())

	assert.False(t, DefaultErrorLoggingConfig().Enable)
}
