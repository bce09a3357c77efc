package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is the single collapsed failure for login attempts:
// unknown email and wrong password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a hashed password. Input is assumed
// validated by the handler; the duplicate-email check happens here.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if _, err := s.repo.FindByEmail(ctx, reg.Email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The insert still races a concurrent registration for the same email;
	// the repository maps the unique violation back to ErrEmailTaken.
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Profile returns the user for a verified session subject.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
