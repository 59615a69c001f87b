package auth

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	"golang.org/x/crypto/bcrypt"
)

// PasswordService hashes passwords and enforces the policy.
type PasswordService struct {
	policy     PasswordPolicy
	bcryptCost int
	metrics    *Metrics
}

// NewPasswordService; metrics may be nil.
func NewPasswordService(policy PasswordPolicy, bcryptCost int, metrics *Metrics) *PasswordService {
	return &PasswordService{
		policy:     policy,
		bcryptCost: bcryptCost,
		metrics:    metrics,
	}
}

func (s *PasswordService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *PasswordService) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword returns the first policy rule the password breaks.
func (s *PasswordService) ValidatePassword(ctx context.Context, password string) error {
	err := s.validate(password)
	result := "valid"
	if err != nil {
		var le *errcode.LayeredError
		if errors.As(err, &le) {
			result = strings.ToLower(le.MsgKey())
		} else {
			result = "invalid"
		}
	}
	s.metrics.RecordPasswordValidation(ctx, result)
	return err
}

func (s *PasswordService) validate(password string) error {
	if len(password) < s.policy.MinLength {
		return ErrPasswordTooShort
	}
	if s.policy.MaxLength > 0 && len(password) > s.policy.MaxLength {
		return ErrPasswordTooLong
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	switch {
	case s.policy.RequireUppercase && !hasUpper:
		return ErrPasswordRequireUppercase
	case s.policy.RequireLowercase && !hasLower:
		return ErrPasswordRequireLowercase
	case s.policy.RequireDigit && !hasDigit:
		return ErrPasswordRequireDigit
	case s.policy.RequireSpecialChar && !hasSpecial:
		return ErrPasswordRequireSpecial
	}

	lower := strings.ToLower(password)
	for _, weak := range s.policy.Blacklist {
		if weak != "" && strings.Contains(lower, strings.ToLower(weak)) {
			return ErrPasswordInBlacklist
		}
	}
	return nil
}

func (s *PasswordService) Policy() PasswordPolicy {
	return s.policy
}
