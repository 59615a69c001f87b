package auth

import (
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
)

func newError(code int, key, msg string, status int) *errcode.LayeredError {
	return errcode.Register(errcode.New(errcode.ModuleAuth, code, "auth", key, msg, status))
}

// Password policy violations.
var (
	ErrPasswordTooShort         = newError(1, "PASSWORD_TOO_SHORT", "password is too short", http.StatusBadRequest)
	ErrPasswordTooLong          = newError(2, "PASSWORD_TOO_LONG", "password is too long", http.StatusBadRequest)
	ErrPasswordRequireUppercase = newError(3, "PASSWORD_REQUIRE_UPPERCASE", "password must contain an uppercase letter", http.StatusBadRequest)
	ErrPasswordRequireLowercase = newError(4, "PASSWORD_REQUIRE_LOWERCASE", "password must contain a lowercase letter", http.StatusBadRequest)
	ErrPasswordRequireDigit     = newError(5, "PASSWORD_REQUIRE_DIGIT", "password must contain a digit", http.StatusBadRequest)
	ErrPasswordRequireSpecial   = newError(6, "PASSWORD_REQUIRE_SPECIAL", "password must contain a special character", http.StatusBadRequest)
	ErrPasswordInBlacklist      = newError(7, "PASSWORD_BLACKLISTED", "password is too common", http.StatusBadRequest)
	ErrPasswordUnchanged        = newError(8, "PASSWORD_UNCHANGED", "new password must differ from the current one", http.StatusBadRequest)
)

// Login and session errors.
var (
	ErrInvalidCredentials = newError(20, "INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized)
	ErrAccountDisabled    = newError(21, "ACCOUNT_DISABLED", "account is disabled", http.StatusForbidden)
	ErrTooManyAttempts    = newError(22, "TOO_MANY_ATTEMPTS", "too many login attempts, try again later", http.StatusTooManyRequests)
	ErrUserNotFound       = newError(23, "USER_NOT_FOUND", "user not found", http.StatusNotFound)
	ErrLogoutFailed       = newError(24, "LOGOUT_FAILED", "session could not be revoked", http.StatusServiceUnavailable)
	ErrUserExists         = newError(25, "USER_EXISTS", "user already exists", http.StatusConflict)
	ErrLoginRetry         = newError(26, "LOGIN_RETRY", "sessions were just revoked, retry the login", http.StatusServiceUnavailable)
)
