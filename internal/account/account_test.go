package account

import (
	"errors"
	"strings"
	"testing"

	"mathcourt/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(s)
}

func TestSignUpAndLogin(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SignUp("asha", "secret123"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	// Signup logs the user in.
	user, found, err := svc.LastUser()
	if err != nil || !found || user != "asha" {
		t.Fatalf("LastUser after signup = %q found=%v err=%v, want asha", user, found, err)
	}

	if err := svc.Login("asha", "secret123"); err != nil {
		t.Errorf("Login with correct password failed: %v", err)
	}
	if err := svc.Login("asha", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with wrong password = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with unknown user = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignUpDuplicate(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SignUp("asha", "one"); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}
	if err := svc.SignUp("asha", "two"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate SignUp = %v, want ErrDuplicateUser", err)
	}
	// The original password still works.
	if err := svc.Login("asha", "one"); err != nil {
		t.Errorf("Login after failed duplicate signup: %v", err)
	}
}

func TestSignUpEmptyCredentials(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SignUp("", "pw"); !errors.Is(err, ErrEmptyCredentials) {
		t.Errorf("SignUp with empty username = %v, want ErrEmptyCredentials", err)
	}
	if err := svc.SignUp("asha", ""); !errors.Is(err, ErrEmptyCredentials) {
		t.Errorf("SignUp with empty password = %v, want ErrEmptyCredentials", err)
	}
	if err := svc.SignUp("  ", "pw"); !errors.Is(err, ErrEmptyCredentials) {
		t.Errorf("SignUp with whitespace username = %v, want ErrEmptyCredentials", err)
	}
}

func TestPasswordNotStoredInPlaintext(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	svc := NewService(s)

	if err := svc.SignUp("asha", "secret123"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	raw, found, err := s.Get(store.KeyUsers)
	if err != nil || !found {
		t.Fatalf("user directory missing: found=%v err=%v", found, err)
	}
	if strings.Contains(raw, "secret123") {
		t.Error("user directory contains the plaintext password")
	}
}

func TestLogout(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SignUp("asha", "pw123"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, found, _ := svc.LastUser(); found {
		t.Error("LastUser still set after Logout")
	}
	// Account survives logout.
	if err := svc.Login("asha", "pw123"); err != nil {
		t.Errorf("Login after Logout failed: %v", err)
	}
}
