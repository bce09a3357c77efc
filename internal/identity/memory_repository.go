package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by email
}

// NewMemoryRepository builds an in-memory user store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return ErrEmailTaken
	}
	r.users[user.Email] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) SetResetChallenge(_ context.Context, id, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, user := range r.users {
		if user.ID == id {
			exp := expiresAt
			user.ResetCode = &code
			user.ResetCodeExpiresAt = &exp
			user.UpdatedAt = time.Now().UTC()
			r.users[email] = user
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) ClearResetChallenge(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, user := range r.users {
		if user.ID == id {
			if user.ResetCode == nil || *user.ResetCode != code {
				return nil
			}
			user.ResetCode = nil
			user.ResetCodeExpiresAt = nil
			user.UpdatedAt = time.Now().UTC()
			r.users[email] = user
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) ConsumeResetChallenge(_ context.Context, email, code string, now time.Time, newHash []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok || !challengeMatches(user, code, now) {
		return false, nil
	}
	user.PasswordHash = newHash
	user.ResetCode = nil
	user.ResetCodeExpiresAt = nil
	user.UpdatedAt = time.Now().UTC()
	r.users[email] = user
	return true, nil
}

func (r *memoryRepository) FindByResetChallenge(_ context.Context, email, code string, now time.Time) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[email]
	if !ok || !challengeMatches(user, code, now) {
		return User{}, ErrNotFound
	}
	return user, nil
}

func challengeMatches(user User, code string, now time.Time) bool {
	return user.ResetCode != nil && *user.ResetCode == code &&
		user.ResetCodeExpiresAt != nil && user.ResetCodeExpiresAt.After(now)
}
