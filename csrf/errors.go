package csrf

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
)

// Stable reason codes returned to clients.
const (
	ReasonTokenMissing  = "CSRF_TOKEN_MISSING"
	ReasonHeaderMissing = "CSRF_HEADER_MISSING"
	ReasonTokenInvalid  = "CSRF_TOKEN_INVALID"
)

var (
	ErrTokenMissing = errcode.Register(errcode.New(errcode.ModuleCSRF, 1, "csrf",
		ReasonTokenMissing, "CSRF token cookie is missing", http.StatusForbidden))
	ErrHeaderMissing = errcode.Register(errcode.New(errcode.ModuleCSRF, 2, "csrf",
		ReasonHeaderMissing, "CSRF token header is missing", http.StatusForbidden))
	ErrTokenInvalid = errcode.Register(errcode.New(errcode.ModuleCSRF, 3, "csrf",
		ReasonTokenInvalid, "CSRF token is invalid", http.StatusForbidden))

	// ErrTokenGeneration means the random source failed.
	ErrTokenGeneration = errcode.Register(errcode.New(errcode.ModuleCSRF, 4, "csrf",
		"CSRF_TOKEN_GENERATION_FAILED", "failed to generate CSRF token", http.StatusInternalServerError))
)

// Reason extracts the client-facing reason code from a guard error.
// Unknown errors map to CSRF_TOKEN_INVALID.
func Reason(err error) string {
	var le *errcode.LayeredError
	if errors.As(err, &le) && le.Module() == "csrf" {
		return le.MsgKey()
	}
	return ReasonTokenInvalid
}
