package revocation

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Claims are the already-verified claims of a request's token. The
// revocation check never looks at signatures.
type Claims struct {
	TokenID   string    // jti
	Subject   string    // user id
	IssuedAt  time.Time // iat
	ExpiresAt time.Time // exp
	// Token is the raw token; only consulted when TokenID is empty.
	Token string
}

// identifier returns the blocklist key for these claims, "" if none can be
// derived.
func (c *Claims) identifier() string {
	return TokenIdentifier(c.TokenID, c.Token)
}

// TokenIdentifier prefers the jti and falls back to "sha256:<hex>" of the
// full raw token.
func TokenIdentifier(jti, rawToken string) string {
	if jti != "" {
		return jti
	}
	if rawToken == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(rawToken))
	return "sha256:" + hex.EncodeToString(sum[:])
}
