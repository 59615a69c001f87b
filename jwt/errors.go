package jwt

import "errors"

var (
	ErrTokenMissing     = errors.New("jwt: token missing")
	ErrTokenInvalid     = errors.New("jwt: token invalid")
	ErrTokenExpired     = errors.New("jwt: token expired")
	ErrTokenNotYetValid = errors.New("jwt: token not yet valid")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrInvalidClaims    = errors.New("jwt: invalid claims")

	ErrSecretEmpty           = errors.New("jwt: secret is empty")
	ErrAlgorithmNotSupported = errors.New("jwt: algorithm not supported")
)
