package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndCheck(t *testing.T) {
	s := NewPasswordService(DefaultConfig().Password.Policy, bcrypt.MinCost, nil)

	hash, err := s.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, s.CheckPassword("secret123", hash))
	assert.False(t, s.CheckPassword("secret124", hash))
	assert.False(t, s.CheckPassword("secret123", "not-a-hash"))
}

func TestPasswordService_ValidatePassword(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:          8,
		MaxLength:          20,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
		Blacklist:          []string{"password"},
	}
	s := NewPasswordService(policy, bcrypt.MinCost, nil)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Abcdef1!", nil},
		{"too short", "Ab1!", ErrPasswordTooShort},
		{"too long", "Abcdefghijklmnopqr1!x", ErrPasswordTooLong},
		{"no uppercase", "abcdef1!", ErrPasswordRequireUppercase},
		{"no lowercase", "ABCDEF1!", ErrPasswordRequireLowercase},
		{"no digit", "Abcdefg!", ErrPasswordRequireDigit},
		{"no special", "Abcdefg1", ErrPasswordRequireSpecial},
		{"blacklisted", "MyPassword1!", ErrPasswordInBlacklist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidatePassword(context.Background(), tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
