// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered account with stored password credentials.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active authenticated session. The token is the
// opaque value carried in the session cookie; the stored row is the
// authority on who the caller is.
type Session struct {
	Token     string
	UserID    string
	Username  string
	CreatedAt time.Time
}

// UserRepository defines the port for credential persistence.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, id, username, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence.
type SessionRepository interface {
	Create(ctx context.Context, token, userID, username string) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
