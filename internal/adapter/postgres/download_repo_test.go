package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/domain"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewFromSQL(sqlDB), mock
}

func TestTokenRepo_Redeem_ConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	// The check and the mark are one statement: UPDATE guarded by the
	// current used value, returning the joined file path.
	mock.ExpectQuery(`UPDATE download_tokens dt SET used = TRUE\s+FROM download_files df\s+WHERE dt.token = \$1 AND dt.used = FALSE AND df.id = dt.file_id\s+RETURNING df.file_path`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).AddRow("secret.zip"))

	path, ok, err := repo.Redeem(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret.zip", path)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Redeem_AlreadySpent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(`UPDATE download_tokens`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}))

	_, ok, err := repo.Redeem(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Exists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM download_tokens WHERE token = \$1\)`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(`INSERT INTO download_tokens`).
		WithArgs("t-1", "tok-1", "f-1", "u-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.DownloadToken{
		ID: "t-1", Token: "tok-1", FileID: "f-1", UserID: "u-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepo_List_PublicOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	rows := sqlmock.NewRows([]string{"id", "file_path", "display_name", "description", "is_protected", "created_at"}).
		AddRow("f-1", "notes.txt", "Notes", "", false, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM download_files WHERE is_protected = FALSE ORDER BY created_at`).
		WillReturnRows(rows)

	files, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepo_GetByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM download_files WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_path", "display_name", "description", "is_protected", "created_at"}))

	f, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}
