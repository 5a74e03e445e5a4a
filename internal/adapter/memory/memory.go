// Package memory implements in-memory repositories for development and
// testing.
package memory

import (
	"context"
	"sync"
	"time"

	"filegate/internal/app"
	"filegate/internal/domain"
)

// DB holds all in-memory state, guarded by one mutex. Repository wrappers
// (SessionRepo, FileRepo, TokenRepo) share it the same way the Postgres
// adapter shares its connection pool.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	sessions map[string]*domain.Session
	files    []domain.DownloadFile
	tokens   map[string]*domain.DownloadToken
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		tokens:   make(map[string]*domain.DownloadToken),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.FileRepository = (*FileRepo)(nil)
var _ domain.TokenRepository = (*TokenRepo)(nil)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create inserts a new user, enforcing username uniqueness.
func (db *DB) Create(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, app.ErrDuplicateUsername
		}
	}
	u := &domain.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// SessionRepo implements session operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, token, userID, username string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions[token] = &domain.Session{Token: token, UserID: userID, Username: username, CreatedAt: time.Now()}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// FileRepo implements the download catalog on DB.
type FileRepo struct {
	db *DB
}

// NewFileRepo wraps a DB as a FileRepository.
func NewFileRepo(db *DB) *FileRepo {
	return &FileRepo{db: db}
}

// Add seeds a catalog entry. Catalog mutation is administrative; this
// exists for tests and local development.
func (r *FileRepo) Add(f domain.DownloadFile) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	r.db.files = append(r.db.files, f)
}

// List returns catalog entries in insertion order.
func (r *FileRepo) List(ctx context.Context, publicOnly bool) ([]domain.DownloadFile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.DownloadFile, 0, len(r.db.files))
	for _, f := range r.db.files {
		if publicOnly && f.IsProtected {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// GetByID retrieves a catalog entry by id.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*domain.DownloadFile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.files {
		if r.db.files[i].ID == id {
			cp := r.db.files[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// TokenRepo implements download token persistence on DB.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo wraps a DB as a TokenRepository.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Create inserts a new unused token.
func (r *TokenRepo) Create(ctx context.Context, t *domain.DownloadToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.db.tokens[cp.Token] = &cp
	return nil
}

// Redeem performs the check-and-mark under the mutex, mirroring the single
// conditional UPDATE the Postgres repository issues.
func (r *TokenRepo) Redeem(ctx context.Context, token string) (string, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tokens[token]
	if !ok || t.Used {
		return "", false, nil
	}

	// A token whose file is gone from the catalog stays unspent, matching
	// the join in the Postgres update.
	for i := range r.db.files {
		if r.db.files[i].ID == t.FileID {
			t.Used = true
			return r.db.files[i].FilePath, true, nil
		}
	}
	return "", false, nil
}

// Exists reports whether a token was ever issued.
func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.tokens[token]
	return ok, nil
}
