package revocation

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
)

var (
	// ErrTokenRevoked means the token's id is on the blocklist.
	ErrTokenRevoked = errcode.Register(errcode.New(errcode.ModuleRevocation, 1, "revocation",
		"TOKEN_REVOKED", "token has been revoked", http.StatusUnauthorized))

	// ErrUserInvalidated means the token predates its user's invalidation marker.
	ErrUserInvalidated = errcode.Register(errcode.New(errcode.ModuleRevocation, 2, "revocation",
		"SESSION_INVALIDATED", "all sessions of this user have been invalidated", http.StatusUnauthorized))

	// ErrInvalidClaims means the claims cannot be checked; the request is denied.
	ErrInvalidClaims = errcode.Register(errcode.New(errcode.ModuleRevocation, 3, "revocation",
		"INVALID_CLAIMS", "token claims cannot be checked for revocation", http.StatusUnauthorized))

	// ErrStoreUnavailable means the store failed; the request is denied.
	ErrStoreUnavailable = errcode.Register(errcode.New(errcode.ModuleRevocation, 4, "revocation",
		"REVOCATION_UNAVAILABLE", "revocation state is unavailable", http.StatusServiceUnavailable))
)

// ErrEmptyUserID is returned by InvalidateUser for an empty id.
var ErrEmptyUserID = errors.New("revocation: empty user id")
