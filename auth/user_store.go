package auth

import (
	"context"
	"fmt"
	"sync"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User is an account that can log in.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Status       string
	Roles        []string
}

func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// UserStore looks up accounts. Lookups return ErrUserNotFound for unknown
// users.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// MemoryUserStore keeps users in a map guarded by a mutex. Returned users are
// copies.
type MemoryUserStore struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
	}
}

// NewMemoryUserStoreFromSeeds hashes plain passwords with passwords.
func NewMemoryUserStoreFromSeeds(seeds []UserSeed, passwords *PasswordService) (*MemoryUserStore, error) {
	store := NewMemoryUserStore()
	for _, seed := range seeds {
		hash := seed.PasswordHash
		if hash == "" {
			var err error
			hash, err = passwords.HashPassword(seed.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", seed.Username, err)
			}
		}
		if err := store.Add(&User{
			ID:           seed.ID,
			Username:     seed.Username,
			PasswordHash: hash,
			Status:       UserStatusActive,
			Roles:        seed.Roles,
		}); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *MemoryUserStore) Add(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; ok {
		return ErrUserExists.WithData("id", user.ID)
	}
	if _, ok := s.byUsername[user.Username]; ok {
		return ErrUserExists.WithData("username", user.Username)
	}
	s.byID[user.ID] = cloneUser(user)
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *MemoryUserStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

// SetStatus is used to disable or re-enable an account.
func (s *MemoryUserStore) SetStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Status = status
	return nil
}

func cloneUser(u *User) *User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}
