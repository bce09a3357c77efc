package reset

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/orderking/orderking_api/internal/identity"
	"github.com/orderking/orderking_api/internal/notification"
)

var (
	// ErrInvalidOrExpired is the single collapsed failure for consume and
	// verify attempts: unknown email, wrong code and expired challenge are
	// indistinguishable to the caller.
	ErrInvalidOrExpired = errors.New("invalid or expired reset code")
	// ErrDeliveryFailed indicates the reset email could not be sent. The
	// challenge has already been rolled back when this is returned.
	ErrDeliveryFailed = errors.New("failed to send reset email")
)

const (
	codeMin = 100000
	codeMax = 999999

	deliveryTimeout = 15 * time.Second
)

// Service drives the reset-challenge lifecycle: issue a code, deliver it,
// and consume it exactly once against the stored user.
type Service struct {
	repo     identity.Repository
	notifier notification.Notifier
	codeTTL  time.Duration
	logger   *slog.Logger

	now func() time.Time
}

// NewService creates a reset service issuing codes valid for codeTTL.
func NewService(repo identity.Repository, notifier notification.Notifier, codeTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		codeTTL:  codeTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Request issues a reset challenge for the email and attempts delivery.
// An unknown email is a silent no-op so that the response never reveals
// whether an account exists. If delivery fails the challenge is cleared
// before the error is returned, leaving the user without a stuck code.
func (s *Service) Request(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.codeTTL)

	if err := s.repo.SetResetChallenge(ctx, user.ID, code, expiresAt); err != nil {
		return err
	}

	deliveryCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := s.notifier.Send(deliveryCtx, notification.Message{To: user.Email, Code: code}); err != nil {
		s.logger.Error("reset code delivery failed", slog.String("user_id", user.ID), slog.Any("error", err))
		// Roll back only the code this request issued: a challenge written
		// by a concurrent request whose email went out must survive.
		if clearErr := s.repo.ClearResetChallenge(ctx, user.ID, code); clearErr != nil {
			s.logger.Error("reset challenge rollback failed", slog.String("user_id", user.ID), slog.Any("error", clearErr))
		}
		return ErrDeliveryFailed
	}

	return nil
}

// Consume redeems a challenge and rewrites the password. The repository
// evaluates existence, code equality and expiry in one atomic write, so a
// challenge can never be redeemed twice and a just-expired code cannot slip
// through between check and use.
func (s *Service) Consume(ctx context.Context, email, code, newPassword string) error {
	hash, err := identity.HashPassword(newPassword)
	if err != nil {
		return err
	}

	consumed, err := s.repo.ConsumeResetChallenge(ctx, email, code, s.now(), hash)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidOrExpired
	}
	return nil
}

// Verify checks the challenge predicate without consuming it. The client
// uses this to pre-validate a code before showing the new-password form.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	_, err := s.repo.FindByResetChallenge(ctx, email, code, s.now())
	if errors.Is(err, identity.ErrNotFound) {
		return ErrInvalidOrExpired
	}
	return err
}

// generateCode draws a uniform 6-digit code. The range starts at 100000 so
// the code never loses a leading zero in transit.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
