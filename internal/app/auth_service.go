// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"filegate/internal/domain"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotAuthenticated indicates a request with no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrSetupComplete indicates initial setup was already performed.
	ErrSetupComplete = errors.New("setup already complete")
)

// AuthService handles credential verification and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login verifies the credentials and establishes a session, returning the
// session token to be set as a cookie.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		// Corrupt stored hash is an internal failure, not a bad login.
		return "", fmt.Errorf("verify password for %q: %w", username, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, token, user.ID, user.Username); err != nil {
		return "", err
	}
	return token, nil
}

// Logout destroys the session for the given token. Idempotent: an unknown
// token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// WhoAmI resolves a session token to the authenticated identity.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

// CreateUser hashes the password with a fresh salt and inserts a new
// credential row. Returns the new user's id.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	user, err := s.users.Create(ctx, uuid.NewString(), username, hash)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// CreateInitialUser creates the first account. Refuses once any user exists
// so the setup route cannot be replayed.
func (s *AuthService) CreateInitialUser(ctx context.Context, username, password string) (string, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrSetupComplete
	}
	return s.CreateUser(ctx, username, password)
}

func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
