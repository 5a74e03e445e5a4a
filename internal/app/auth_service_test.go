package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	createFn        func(ctx context.Context, id, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, id, username, passwordHash)
	}
	return &domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, token, userID, username string) error
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn     func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, token, userID, username string) error {
	if m.createFn != nil {
		return m.createFn(ctx, token, userID, username)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &domain.User{ID: "u-1", Username: "testuser", PasswordHash: hash}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	user := userWithPassword(t, "testpass123")

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	var createdFor string
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, token, userID, username string) error {
			require.NotEmpty(t, token)
			createdFor = userID
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.Login(ctx, "testuser", "testpass123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "u-1", createdFor)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := userWithPassword(t, "correctpass")
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "ghost", "whatever")
	// Same error as a wrong password so usernames cannot be enumerated.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_MalformedStoredHash(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: "u-1", Username: "testuser", PasswordHash: "not-a-phc-string"}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "whatever")
	require.Error(t, err)
	// Internal error, not a credential mismatch.
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestAuthService_WhoAmI(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			if token == "valid" {
				return &domain.Session{Token: token, UserID: "u-1", Username: "testuser"}, nil
			}
			return nil, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions)

	session, err := svc.WhoAmI(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, "testuser", session.Username)

	_, err = svc.WhoAmI(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.WhoAmI(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthService_Logout_UnknownTokenIsNoError(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
}

func TestAuthService_CreateUser_HashesPassword(t *testing.T) {
	var storedHash string
	users := &mockUserRepo{
		createFn: func(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
			storedHash = passwordHash
			return &domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	id, err := svc.CreateUser(context.Background(), "newuser", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotContains(t, storedHash, "secret")

	ok, err := VerifyPassword(storedHash, "secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
			return nil, ErrDuplicateUsername
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.CreateUser(context.Background(), "taken", "secret")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAuthService_CreateInitialUser_RefusedWhenUsersExist(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 1, nil },
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.CreateInitialUser(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, ErrSetupComplete)
}

func TestAuthService_CreateInitialUser_CountError(t *testing.T) {
	boom := errors.New("db down")
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 0, boom },
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.CreateInitialUser(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSetupComplete)
}

func TestAuthService_Login_RepoError(t *testing.T) {
	boom := errors.New("db down")
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, boom
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "x")
	assert.ErrorIs(t, err, boom)
}
