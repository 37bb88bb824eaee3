package service

import (
	"errors"
	"testing"
	"time"

	"shadowchase/internal/security"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	env := newTestEnv(t)
	tokens := security.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(env.userRepo, tokens)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuthService(t)

	user, token, err := auth.Register("alice@example.com", "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token == "" {
		t.Error("expected a token on registration")
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in the clear")
	}

	got, token, err := auth.Login("alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned user %d, expected %d", got.ID, user.ID)
	}

	verified, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Errorf("token verified as user %d, expected %d", verified.ID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := newAuthService(t)

	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"missing email", "", "alice", "correct-horse"},
		{"malformed email", "not-an-email", "alice", "correct-horse"},
		{"short username", "alice@example.com", "al", "correct-horse"},
		{"bad username characters", "alice@example.com", "al ice!", "correct-horse"},
		{"short password", "alice@example.com", "alice", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Register(tt.email, tt.username, tt.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	auth := newAuthService(t)

	if _, _, err := auth.Register("alice@example.com", "alice", "correct-horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := auth.Register("alice@example.com", "alice2", "correct-horse"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if _, _, err := auth.Register("alice2@example.com", "alice", "correct-horse"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthService(t)

	if _, _, err := auth.Register("alice@example.com", "alice", "correct-horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := auth.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login("nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	auth := newAuthService(t)

	if _, err := auth.VerifyToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
