// Package account manages player accounts: signup, login, logout, and the
// remembered last-logged-in user. Passwords are stored as bcrypt hashes in
// the user directory record.
package account

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mathcourt/internal/logging"
	"mathcourt/internal/store"
)

var (
	// ErrDuplicateUser is returned by SignUp when the username is taken.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrEmptyCredentials is returned when username or password is blank.
	ErrEmptyCredentials = errors.New("username and password must not be empty")
)

// userRecord is the persisted shape of one account.
type userRecord struct {
	PasswordHash string `json:"passwordHash"`
}

// Service provides account operations over the store.
type Service struct {
	store *store.Store
}

// NewService returns an account service backed by the given store.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) loadUsers() (map[string]userRecord, error) {
	users := make(map[string]userRecord)
	if _, err := s.store.GetJSON(store.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("failed to load user directory: %w", err)
	}
	return users, nil
}

// SignUp creates an account and logs the new user in.
func (s *Service) SignUp(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		logging.Auth("Signup rejected, username taken: %s", username)
		return ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	users[username] = userRecord{PasswordHash: string(hash)}

	if err := s.store.SetJSON(store.KeyUsers, users); err != nil {
		return err
	}
	if err := s.store.Set(store.KeyLastUser, username); err != nil {
		return err
	}
	logging.Auth("New account: %s", username)
	return nil
}

// Login verifies credentials and remembers the user as last logged in.
func (s *Service) Login(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	rec, exists := users[username]
	if !exists {
		logging.AuthDebug("Login failed, unknown user: %s", username)
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		logging.AuthDebug("Login failed, bad password: %s", username)
		return ErrInvalidCredentials
	}

	if err := s.store.Set(store.KeyLastUser, username); err != nil {
		return err
	}
	logging.Auth("Login: %s", username)
	return nil
}

// Logout clears the remembered user. Account data stays intact.
func (s *Service) Logout() error {
	logging.Auth("Logout")
	return s.store.Delete(store.KeyLastUser)
}

// LastUser returns the remembered user from the previous session, if any.
func (s *Service) LastUser() (string, bool, error) {
	username, found, err := s.store.Get(store.KeyLastUser)
	if err != nil || !found {
		return "", false, err
	}
	// The remembered name must still exist in the directory.
	users, err := s.loadUsers()
	if err != nil {
		return "", false, err
	}
	if _, exists := users[username]; !exists {
		return "", false, nil
	}
	return username, true, nil
}

// Exists reports whether a username is registered.
func (s *Service) Exists(username string) (bool, error) {
	users, err := s.loadUsers()
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}
