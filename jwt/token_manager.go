// Package jwt signs and verifies access tokens. Verification covers the
// signature and time claims only; revocation is a separate step.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenManager turns subjects into tokens and tokens into verified claims.
type TokenManager interface {
	GenerateAccessToken(ctx context.Context, subject string, claims map[string]any) (string, error)

	// VerifyToken checks the signature, exp, nbf, iss and aud.
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

type tokenManagerImpl struct {
	config        *Config
	signingMethod jwt.SigningMethod
	key           []byte
	parser        *jwt.Parser
	metrics       *Metrics
	logger        *logger.CtxZapLogger
}

// NewTokenManager validates config. metrics may be nil.
func NewTokenManager(config *Config, metrics *Metrics, log *logger.CtxZapLogger) (TokenManager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = logger.GetLogger("jwt")
	}

	m := &tokenManagerImpl{
		config:  config,
		key:     []byte(config.Secret),
		metrics: metrics,
		logger:  log,
	}
	switch config.Algorithm {
	case "HS256":
		m.signingMethod = jwt.SigningMethodHS256
	case "HS384":
		m.signingMethod = jwt.SigningMethodHS384
	case "HS512":
		m.signingMethod = jwt.SigningMethodHS512
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{config.Algorithm}),
		jwt.WithLeeway(config.Security.ClockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if config.AccessToken.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.AccessToken.Issuer))
	}
	if config.AccessToken.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.AccessToken.Audience))
	}
	m.parser = jwt.NewParser(opts...)

	return m, nil
}

func (m *tokenManagerImpl) GenerateAccessToken(ctx context.Context, subject string, customClaims map[string]any) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}

	now := time.Now()
	claims := jwt.MapClaims{}
	// custom claims first so they cannot override the registered ones
	for k, v := range customClaims {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(m.config.AccessToken.TTL).Unix()
	claims["iss"] = m.config.AccessToken.Issuer

	if m.config.AccessToken.Audience != "" {
		claims["aud"] = m.config.AccessToken.Audience
	}
	if m.config.Security.EnableJTI {
		claims["jti"] = uuid.New().String()
	}
	if m.config.Security.EnableNotBefore {
		claims["nbf"] = now.Unix()
	}

	tokenString, err := jwt.NewWithClaims(m.signingMethod, claims).SignedString(m.key)
	if err != nil {
		m.logger.ErrorCtx(ctx, "failed to sign token", zap.Error(err), zap.String("subject", subject))
		return "", fmt.Errorf("sign token failed: %w", err)
	}

	m.metrics.RecordGenerated(ctx)
	m.logger.DebugCtx(ctx, "access token generated",
		zap.String("subject", subject),
		zap.Duration("ttl", m.config.AccessToken.TTL))
	return tokenString, nil
}

func (m *tokenManagerImpl) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	start := time.Now()
	if tokenString == "" {
		m.metrics.RecordVerified(ctx, "missing", time.Since(start))
		return nil, ErrTokenMissing
	}

	mapClaims := jwt.MapClaims{}
	if _, err := m.parser.ParseWithClaims(tokenString, mapClaims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}); err != nil {
		mapped := mapParseError(err)
		m.metrics.RecordVerified(ctx, "invalid", time.Since(start))
		m.logger.WarnCtx(ctx, "token verification failed", zap.Error(err))
		return nil, mapped
	}

	claims, err := toClaims(mapClaims)
	if err != nil {
		m.metrics.RecordVerified(ctx, "invalid", time.Since(start))
		m.logger.WarnCtx(ctx, "failed to parse claims", zap.Error(err))
		return nil, err
	}
	claims.Token = tokenString

	m.metrics.RecordVerified(ctx, "valid", time.Since(start))
	m.logger.DebugCtx(ctx, "token verified", zap.String("subject", claims.Subject))
	return claims, nil
}

func toClaims(mc jwt.MapClaims) (*Claims, error) {
	claims := &Claims{Extra: map[string]any{}}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidClaims)
	}
	claims.Subject = sub

	iat, err := mc.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: missing iat", ErrInvalidClaims)
	}
	claims.IssuedAt = iat.Time

	if exp, _ := mc.GetExpirationTime(); exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if nbf, _ := mc.GetNotBefore(); nbf != nil {
		claims.NotBefore = nbf.Time
	}
	claims.Issuer, _ = mc.GetIssuer()
	claims.Audience, _ = mc.GetAudience()

	for k, v := range mc {
		switch k {
		case "sub", "iat", "exp", "nbf", "iss", "aud":
		case "jti":
			claims.JTI, _ = v.(string)
		case "username":
			claims.Username, _ = v.(string)
		case "roles":
			if roles, ok := v.([]any); ok {
				for _, role := range roles {
					if r, ok := role.(string); ok {
						claims.Roles = append(claims.Roles, r)
					}
				}
			}
		default:
			claims.Extra[k] = v
		}
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
