// Package auth implements the session lifecycle around the revocation
// registry: login issues tokens, logout blocks one token, and logout-all or a
// password change invalidates every token a user holds.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"go.uber.org/zap"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
}

// Service ties users, passwords, tokens and revocation together.
type Service struct {
	config    Config
	users     UserStore
	passwords *PasswordService
	attempts  LoginAttemptStore
	tokens    jwt.TokenManager
	registry  *revocation.Registry
	logger    *logger.CtxZapLogger
	metrics   *Metrics

	dummyOnce sync.Once
	dummyHash string
}

type ServiceOption func(*Service)

func WithLogger(l *logger.CtxZapLogger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPasswordService(p *PasswordService) ServiceOption {
	return func(s *Service) {
		s.passwords = p
	}
}

// WithLoginAttemptStore overrides the store built from config. A nil store
// disables throttling.
func WithLoginAttemptStore(store LoginAttemptStore) ServiceOption {
	return func(s *Service) {
		s.attempts = store
	}
}

func NewService(cfg Config, users UserStore, tokens jwt.TokenManager, registry *revocation.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		config:   cfg,
		users:    users,
		tokens:   tokens,
		registry: registry,
	}
	if cfg.LoginAttempt.Enabled {
		s.attempts = NewMemoryLoginAttemptStore()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetLogger("auth")
	}
	if s.passwords == nil {
		s.passwords = NewPasswordService(cfg.Password.Policy, cfg.Password.BcryptCost, s.metrics)
	}
	return s
}

func (s *Service) Passwords() *PasswordService {
	return s.passwords
}

// Login checks credentials and issues an access token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	start := time.Now()
	result, err := s.login(ctx, username, password)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.RecordLogin(ctx, outcome, time.Since(start))
	return result, err
}

func (s *Service) login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.attempts != nil {
		locked, err := s.attempts.IsLocked(ctx, username, s.config.LoginAttempt.MaxAttempts)
		if err != nil {
			s.logger.WarnCtx(ctx, "login attempt lookup failed", zap.String("username", username), zap.Error(err))
		} else if locked {
			s.metrics.RecordFailedAttempt(ctx, "locked")
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.ErrorCtx(ctx, "user lookup failed", zap.String("username", username), zap.Error(err))
			return nil, err
		}
		// keep the response time close to that of a wrong password
		s.passwords.CheckPassword(password, s.dummy())
		s.recordFailure(ctx, username, "unknown_user")
		return nil, ErrInvalidCredentials
	}

	if !s.passwords.CheckPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, username, "wrong_password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.metrics.RecordFailedAttempt(ctx, "disabled")
		return nil, ErrAccountDisabled
	}

	if s.attempts != nil {
		if err := s.attempts.ResetAttempts(ctx, username); err != nil {
			s.logger.WarnCtx(ctx, "reset login attempts failed", zap.String("username", username), zap.Error(err))
		}
	}

	token, claims, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoCtx(ctx, "login successful", zap.String("user_id", user.ID), zap.String("jti", claims.JTI))
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt,
		UserID:      user.ID,
	}, nil
}

// maxReissueWait bounds how long Login waits for a fresh iat second.
const maxReissueWait = 3 * time.Second

// issue signs a token that the registry accepts. iat has second resolution,
// so a token signed in the same second as the user's invalidation marker is
// born revoked; issue then waits for the next second and signs again.
func (s *Service) issue(ctx context.Context, user *User) (string, *jwt.Claims, error) {
	for attempt := 0; ; attempt++ {
		token, err := s.tokens.GenerateAccessToken(ctx, user.ID, map[string]any{
			"username": user.Username,
			"roles":    user.Roles,
		})
		if err != nil {
			return "", nil, err
		}
		claims, err := s.tokens.VerifyToken(ctx, token)
		if err != nil {
			return "", nil, err
		}
		if s.registry == nil {
			return token, claims, nil
		}

		err = s.registry.Check(ctx, revocationClaims(claims))
		switch {
		case err == nil:
			return token, claims, nil
		case !errors.Is(err, revocation.ErrUserInvalidated):
			// the token is checked again on every request
			s.logger.WarnCtx(ctx, "revocation check at login failed", zap.String("user_id", user.ID), zap.Error(err))
			return token, claims, nil
		case attempt > 0:
			return "", nil, ErrLoginRetry
		}

		at, ok, err := s.registry.InvalidatedAt(ctx, user.ID)
		if err != nil || !ok {
			return "", nil, ErrLoginRetry
		}
		wait := time.Until(at.Truncate(time.Second).Add(time.Second))
		if wait > maxReissueWait {
			return "", nil, ErrLoginRetry
		}
		s.logger.DebugCtx(ctx, "token issued in the invalidation second, reissuing",
			zap.String("user_id", user.ID), zap.Duration("wait", wait))
		if err := sleepCtx(ctx, wait); err != nil {
			return "", nil, err
		}
	}
}

func revocationClaims(c *jwt.Claims) *revocation.Claims {
	return &revocation.Claims{
		TokenID:   c.JTI,
		Subject:   c.Subject,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
		Token:     c.Token,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) recordFailure(ctx context.Context, username, reason string) {
	s.metrics.RecordFailedAttempt(ctx, reason)
	if s.attempts == nil {
		return
	}
	count, err := s.attempts.IncrementAttempts(ctx, username, s.config.LoginAttempt.LockoutDuration)
	if err != nil {
		s.logger.WarnCtx(ctx, "record login attempt failed", zap.String("username", username), zap.Error(err))
		return
	}
	if count >= s.config.LoginAttempt.MaxAttempts {
		s.logger.WarnCtx(ctx, "account locked after failed logins",
			zap.String("username", username),
			zap.Int("attempts", count),
			zap.Duration("lockout", s.config.LoginAttempt.LockoutDuration))
	}
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.passwords.HashPassword("sessionguard-dummy-password")
	})
	return s.dummyHash
}

// Logout revokes a single token.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if !s.registry.Block(ctx, rawToken) {
		return ErrLogoutFailed
	}
	s.metrics.RecordLogout(ctx, "session")
	return nil
}

// LogoutAll revokes every token issued to userID so far.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.registry.InvalidateUser(ctx, userID); err != nil {
		return ErrLogoutFailed.Wrap(err)
	}
	s.metrics.RecordLogout(ctx, "all")
	s.logger.InfoCtx(ctx, "all sessions revoked", zap.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password and revokes every existing session,
// including the caller's.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.CheckPassword(oldPassword, user.PasswordHash) {
		s.metrics.RecordFailedAttempt(ctx, "wrong_password")
		return ErrInvalidCredentials
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if err := s.passwords.ValidatePassword(ctx, newPassword); err != nil {
		return err
	}

	hash, err := s.passwords.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if err := s.registry.InvalidateUser(ctx, userID); err != nil {
		s.logger.ErrorCtx(ctx, "password changed but sessions were not revoked",
			zap.String("user_id", userID), zap.Error(err))
		return ErrLogoutFailed.Wrap(err)
	}
	s.logger.InfoCtx(ctx, "password changed", zap.String("user_id", userID))
	return nil
}
