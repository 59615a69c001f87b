// Package revocation makes JWT sessions revocable before their natural
// expiry.
//
// Two registries back it: blocked token ids (kept until the token's own exp)
// and per-user invalidation markers (every token issued before the marker is
// revoked). The registry never verifies signatures; Check expects claims
// that an earlier step has already verified.
package revocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// pingUserID never matches a real subject.
const pingUserID = "\x00health"

// Registry is the revocation component. It owns its store exclusively.
type Registry struct {
	store   Store
	logger  *logger.CtxZapLogger
	metrics *Metrics
	now     func() time.Time
	parser  *jwt.Parser
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(l *logger.CtxZapLogger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry wraps store. A nil store gets a fresh MemoryStore.
func NewRegistry(store Store, opts ...Option) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	r := &Registry{
		store:  store,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.GetLogger("revocation")
	}
	return r
}

// Block adds a token to the blocklist until its exp. The signature is not
// verified and alg is ignored. It returns false, without side effects, for
// empty or malformed input and for tokens without a positive numeric exp. A token that has already
// expired returns true without being stored.
func (r *Registry) Block(ctx context.Context, rawToken string) bool {
	if rawToken == "" {
		r.metrics.RecordBlocked(ctx, "rejected")
		return false
	}

	claims, err := r.decodeClaims(rawToken)
	if err != nil {
		r.reject(ctx, "malformed token", err)
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || exp.Unix() <= 0 {
		r.reject(ctx, "token has no numeric exp", err)
		return false
	}

	jti, _ := claims["jti"].(string)
	id := TokenIdentifier(jti, rawToken)

	if !exp.Time.After(r.now()) {
		r.metrics.RecordBlocked(ctx, "expired")
		r.logger.DebugCtx(ctx, "token already expired, not stored", zap.String("token_id", id))
		return true
	}

	if err := r.store.BlockToken(ctx, id, exp.Time); err != nil {
		r.logger.ErrorCtx(ctx, "failed to block token", zap.String("token_id", id), zap.Error(err))
		r.metrics.RecordBlocked(ctx, "error")
		return false
	}

	r.metrics.RecordBlocked(ctx, "blocked")
	r.logger.InfoCtx(ctx, "token blocked",
		zap.String("token_id", id),
		zap.Time("expires_at", exp.Time))
	return true
}

// decodeClaims reads the payload of a compact JWS. The header only has to be
// a JSON object; alg is not interpreted since nothing is verified here.
func (r *Registry) decodeClaims(rawToken string) (jwt.MapClaims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, jwt.ErrTokenMalformed
	}

	header, err := r.parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", jwt.ErrTokenMalformed, err)
	}
	var h map[string]any
	if err := json.Unmarshal(header, &h); err != nil || h == nil {
		return nil, fmt.Errorf("%w: header is not a JSON object", jwt.ErrTokenMalformed)
	}

	payload, err := r.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", jwt.ErrTokenMalformed, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", jwt.ErrTokenMalformed, err)
	}
	return claims, nil
}

func (r *Registry) reject(ctx context.Context, msg string, err error) {
	r.metrics.RecordBlocked(ctx, "rejected")
	r.logger.DebugCtx(ctx, "block rejected: "+msg, zap.Error(err))
}

// InvalidateUser revokes every token of userID issued before now. Repeated
// calls overwrite the marker.
func (r *Registry) InvalidateUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	at := r.now()
	if err := r.store.InvalidateUser(ctx, userID, at); err != nil {
		r.logger.ErrorCtx(ctx, "failed to invalidate user", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	r.metrics.RecordInvalidated(ctx)
	r.logger.InfoCtx(ctx, "user sessions invalidated",
		zap.String("user_id", userID),
		zap.Time("invalidated_at", at))
	return nil
}

// InvalidatedAt returns the user's invalidation marker, ok=false if none.
func (r *Registry) InvalidatedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	return r.store.UserInvalidatedAt(ctx, userID)
}

// Check returns nil when the token may be used. It fails closed: claims it
// cannot interpret and store errors deny.
//
// iat has second resolution while the marker does not, so a token issued in
// the same second as an invalidation, even just after it, is denied.
func (r *Registry) Check(ctx context.Context, claims *Claims) error {
	err := r.check(ctx, claims)

	result := "allow"
	if err != nil {
		var le *errcode.LayeredError
		result = "error"
		if errors.As(err, &le) {
			result = le.MsgKey()
		}
	}
	r.metrics.RecordCheck(ctx, result)
	return err
}

func (r *Registry) check(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.Subject == "" || claims.IssuedAt.IsZero() {
		return ErrInvalidClaims
	}
	id := claims.identifier()
	if id == "" {
		return ErrInvalidClaims
	}

	blocked, err := r.store.IsTokenBlocked(ctx, id)
	if err != nil {
		r.logger.ErrorCtx(ctx, "blocklist lookup failed", zap.Error(err))
		return ErrStoreUnavailable.Wrap(err)
	}
	if blocked {
		r.logger.DebugCtx(ctx, "revoked token rejected", zap.String("token_id", id))
		return ErrTokenRevoked
	}

	at, ok, err := r.store.UserInvalidatedAt(ctx, claims.Subject)
	if err != nil {
		r.logger.ErrorCtx(ctx, "user marker lookup failed", zap.Error(err))
		return ErrStoreUnavailable.Wrap(err)
	}
	if ok && claims.IssuedAt.Before(at) {
		r.logger.DebugCtx(ctx, "token predates user invalidation",
			zap.String("user_id", claims.Subject),
			zap.Time("issued_at", claims.IssuedAt),
			zap.Time("invalidated_at", at))
		return ErrUserInvalidated
	}
	return nil
}

// Stats returns the number of live entries in each registry.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	return r.store.Stats(ctx)
}

// Sweep removes expired entries and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	n, err := r.store.Sweep(ctx)
	if err != nil {
		return n, err
	}
	r.metrics.RecordSwept(ctx, n)
	if n > 0 {
		r.logger.DebugCtx(ctx, "expired revocation entries swept", zap.Int("removed", n))
	}
	return n, nil
}

// Ping performs a single marker lookup, so a store outage surfaces the same
// way it would on an authenticated request.
func (r *Registry) Ping(ctx context.Context) error {
	_, _, err := r.store.UserInvalidatedAt(ctx, pingUserID)
	return err
}

// Clear empties both registries. Meant for tests and admin tooling.
func (r *Registry) Clear(ctx context.Context) error {
	return r.store.Clear(ctx)
}

func (r *Registry) Close() error {
	return r.store.Close()
}
