package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
)

// Config covers password handling, login throttling and seeded users.
type Config struct {
	Password     PasswordConfig     `yaml:"password" mapstructure:"password"`
	LoginAttempt LoginAttemptConfig `yaml:"login_attempt" mapstructure:"login_attempt"`
	Users        []UserSeed         `yaml:"users" mapstructure:"users"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

type PasswordConfig struct {
	Policy     PasswordPolicy `yaml:"policy" mapstructure:"policy"`
	BcryptCost int            `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
}

// PasswordPolicy is checked on password change.
type PasswordPolicy struct {
	MinLength          int      `yaml:"min_length" mapstructure:"min_length"`
	MaxLength          int      `yaml:"max_length" mapstructure:"max_length"`
	RequireUppercase   bool     `yaml:"require_uppercase" mapstructure:"require_uppercase"`
	RequireLowercase   bool     `yaml:"require_lowercase" mapstructure:"require_lowercase"`
	RequireDigit       bool     `yaml:"require_digit" mapstructure:"require_digit"`
	RequireSpecialChar bool     `yaml:"require_special_char" mapstructure:"require_special_char"`
	Blacklist          []string `yaml:"blacklist" mapstructure:"blacklist"`
}

// LoginAttemptConfig locks a username after repeated failures.
type LoginAttemptConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	LockoutDuration time.Duration `yaml:"lockout_duration" mapstructure:"lockout_duration"`
	Storage         string        `yaml:"storage" mapstructure:"storage"` // memory, redis
	RedisKeyPrefix  string        `yaml:"redis_key_prefix" mapstructure:"redis_key_prefix"`
}

// UserSeed is a user loaded into the in-memory store at startup. Exactly one
// of Password and PasswordHash should be set.
type UserSeed struct {
	ID           string   `yaml:"id" mapstructure:"id"`
	Username     string   `yaml:"username" mapstructure:"username"`
	Password     string   `yaml:"password" mapstructure:"password"`
	PasswordHash string   `yaml:"password_hash" mapstructure:"password_hash"`
	Roles        []string `yaml:"roles" mapstructure:"roles"`
}

func DefaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			BcryptCost: 12,
			Policy: PasswordPolicy{
				MinLength:        8,
				MaxLength:        72, // bcrypt ignores anything longer
				RequireLowercase: true,
				RequireDigit:     true,
			},
		},
		LoginAttempt: LoginAttemptConfig{
			Enabled:         true,
			MaxAttempts:     5,
			LockoutDuration: 15 * time.Minute,
			Storage:         "memory",
			RedisKeyPrefix:  "sessionguard:login_attempt:",
		},
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Password.BcryptCost == 0 {
		c.Password.BcryptCost = def.Password.BcryptCost
	}
	if c.Password.Policy.MinLength == 0 {
		c.Password.Policy.MinLength = def.Password.Policy.MinLength
	}
	if c.Password.Policy.MaxLength == 0 {
		c.Password.Policy.MaxLength = def.Password.Policy.MaxLength
	}
	if c.LoginAttempt.MaxAttempts == 0 {
		c.LoginAttempt.MaxAttempts = def.LoginAttempt.MaxAttempts
	}
	if c.LoginAttempt.LockoutDuration == 0 {
		c.LoginAttempt.LockoutDuration = def.LoginAttempt.LockoutDuration
	}
	if c.LoginAttempt.Storage == "" {
		c.LoginAttempt.Storage = def.LoginAttempt.Storage
	}
	if c.LoginAttempt.RedisKeyPrefix == "" {
		c.LoginAttempt.RedisKeyPrefix = def.LoginAttempt.RedisKeyPrefix
	}
}

// Validate relies on ozzo calling Validate on each nested section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Password),
		validation.Field(&c.LoginAttempt),
		validation.Field(&c.Users),
	)
}

func (c PasswordConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.Policy),
	)
}

func (p PasswordPolicy) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.MinLength, validation.Required, validation.Min(1)),
		validation.Field(&p.MaxLength, validation.Required, validation.Min(p.MinLength), validation.Max(72)),
	)
}

func (c LoginAttemptConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.LockoutDuration, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Storage, validation.Required, validation.In("memory", "redis")),
	)
}

func (u UserSeed) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Username, validation.Required),
		validation.Field(&u.Password, validation.When(u.PasswordHash == "", validation.Required)),
	)
}
