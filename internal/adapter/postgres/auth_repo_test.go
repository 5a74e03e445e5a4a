package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/app"
)

func TestUserRepo_GetByUsername_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

	u, err := db.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u-1", "alice", "hash", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := db.Create(context.Background(), "u-1", "alice", "hash")
	assert.ErrorIs(t, err, app.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_OK(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u-1", "alice", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("u-1", "alice", "hash", now))

	u, err := db.Create(context.Background(), "u-1", "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Lifecycle(t *testing.T) {
	db, mock := newMockDB(t)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("tok", "u-1", "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, sessions.Create(ctx, "tok", "u-1", "alice"))

	mock.ExpectQuery(`SELECT .+ FROM sessions WHERE token = \$1`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "username", "created_at"}).
			AddRow("tok", "u-1", "alice", time.Now()))
	s, err := sessions.GetByToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u-1", s.UserID)

	mock.ExpectExec(`DELETE FROM sessions WHERE token = \$1`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, sessions.Delete(ctx, "tok"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
