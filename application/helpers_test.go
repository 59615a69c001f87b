package application

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KOMKZ/yogan-sessionguard/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "application-test-secret-0123456789abcdef"
	testUserID   = "u-1"
	testUsername = "alice"
	testPassword = "alice-passw0rd"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Server.Mode = gin.TestMode
	cfg.Environment = "test"
	cfg.Logger.Level = "error"
	cfg.JWT.Secret = testSecret
	cfg.Auth.Password.BcryptCost = 4
	cfg.Auth.Users = []auth.UserSeed{
		{ID: testUserID, Username: testUsername, Password: testPassword, Roles: []string{"user"}},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func newTestApp(t *testing.T, cfg *Config) *Application {
	t.Helper()
	app, err := New(cfg, WithoutLoggerSetup())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// browser replays cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]string
	bearer  string
}

func newBrowser(t *testing.T, app *Application) *browser {
	return &browser{t: t, handler: app.Engine(), cookies: map[string]string{}}
}

type response struct {
	*httptest.ResponseRecorder
	body map[string]any
}

func (r response) errorKey() string {
	key, _ := r.body["error"].(string)
	return key
}

func (r response) data() map[string]any {
	data, _ := r.body["data"].(map[string]any)
	return data
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *browser) do(method, path string, payload any, headers map[string]string) response {
	b.t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(b.t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if b.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+b.bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}

	resp := response{ResponseRecorder: w}
	if w.Body.Len() > 0 {
		require.NoError(b.t, json.Unmarshal(w.Body.Bytes(), &resp.body), w.Body.String())
	}
	return resp
}

// csrfToken fetches the bound token, issuing a cookie if needed.
func (b *browser) csrfToken() string {
	b.t.Helper()
	resp := b.do(http.MethodGet, "/csrf-token", nil, nil)
	require.Equal(b.t, http.StatusOK, resp.Code)
	token, _ := resp.body["csrfToken"].(string)
	require.NotEmpty(b.t, token)
	return token
}

// post sends an unsafe request with a matching CSRF header.
func (b *browser) post(path string, payload any) response {
	b.t.Helper()
	return b.do(http.MethodPost, path, payload, map[string]string{"X-CSRF-Token": b.csrfToken()})
}

// login signs in and keeps the access token for later requests.
func (b *browser) login(username, password string) response {
	b.t.Helper()
	resp := b.post("/auth/login", LoginRequest{Username: username, Password: password})
	if resp.Code == http.StatusOK {
		b.bearer, _ = resp.data()["accessToken"].(string)
	}
	return resp
}
