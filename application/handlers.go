package application

import (
	"net/http"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/auth"
	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/health"
	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// ChangePasswordResponse carries the rotated CSRF token. Every session of
// the user, including the caller's, must log in again.
type ChangePasswordResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type MeResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	TokenID   string    `json:"tokenId,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EchoRequest struct {
	Message string `json:"message"`
}

type EchoResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type handlers struct {
	auth     *auth.Service
	registry *revocation.Registry
	csrf     *csrf.Guard
	checks   *health.Aggregator
}

func (h *handlers) login(c *gin.Context, req *LoginRequest) (*auth.LoginResult, error) {
	return h.auth.Login(c.Request.Context(), req.Username, req.Password)
}

// logout blocks the presented token and expires the CSRF cookie.
func (h *handlers) logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		httpx.AbortWithError(c, revocation.ErrInvalidClaims)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims.Token); err != nil {
		httpx.HandleError(c, err)
		return
	}
	h.csrf.Clear(c)
	httpx.OkMessage(c, "logged out")
}

// logoutAll invalidates every token issued to the caller so far.
func (h *handlers) logoutAll(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httpx.AbortWithError(c, revocation.ErrInvalidClaims)
		return
	}
	if err := h.auth.LogoutAll(c.Request.Context(), userID); err != nil {
		httpx.HandleError(c, err)
		return
	}
	h.csrf.Clear(c)
	httpx.OkMessage(c, "all sessions logged out")
}

func (h *handlers) changePassword(c *gin.Context, req *ChangePasswordRequest) (*ChangePasswordResponse, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, revocation.ErrInvalidClaims
	}
	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return nil, err
	}
	token, err := h.csrf.Refresh(c)
	if err != nil {
		return nil, csrf.ErrTokenGeneration
	}
	return &ChangePasswordResponse{CSRFToken: token}, nil
}

func (h *handlers) me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		httpx.AbortWithError(c, revocation.ErrInvalidClaims)
		return
	}
	httpx.OkJson(c, MeResponse{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Roles:     claims.Roles,
		TokenID:   claims.JTI,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
}

func (h *handlers) revocationStats(c *gin.Context) {
	stats, err := h.registry.Stats(c.Request.Context())
	if err != nil {
		httpx.HandleError(c, revocation.ErrStoreUnavailable.Wrap(err))
		return
	}
	httpx.OkJson(c, stats)
}

func (h *handlers) echo(c *gin.Context, req *EchoRequest) (*EchoResponse, error) {
	userID, _ := middleware.GetUserID(c)
	return &EchoResponse{Message: req.Message, UserID: userID}, nil
}

// health answers 503 when any dependency check fails.
func (h *handlers) health(c *gin.Context) {
	resp := h.checks.Check(c.Request.Context())
	if !resp.IsHealthy() {
		c.JSON(http.StatusServiceUnavailable, httpx.Response{
			Success: false,
			Error:   "UNHEALTHY",
			Message: "one or more dependencies are unavailable",
			Data:    resp,
		})
		return
	}
	httpx.OkJson(c, resp)
}
