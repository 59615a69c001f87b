package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGuard(t *testing.T) *csrf.Guard {
	t.Helper()
	guard, err := csrf.NewGuard(csrf.DefaultConfig(), csrf.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	return guard
}

func newTestTokenManager(t *testing.T) jwt.TokenManager {
	t.Helper()
	cfg := jwt.DefaultConfig()
	cfg.Secret = testSecret
	m, err := jwt.NewTokenManager(&cfg, nil, logger.NewNopLogger())
	require.NoError(t, err)
	return m
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
