package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected assigned id")
	}
	if string(user.PasswordHash) == "secret1" {
		t.Fatal("password stored as plaintext")
	}

	authed, err := svc.Authenticate(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, Registration{Username: "alice2", Email: "alice@example.com", Password: "secret2"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := svc.Authenticate(ctx, "alice@example.com", "nope")
	_, unknownEmail := svc.Authenticate(ctx, "bob@example.com", "secret1")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
}
