package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"filegate/internal/domain"
)

// FileRepo implements the download catalog on DB.
type FileRepo struct {
	db *DB
}

// NewFileRepo wraps a DB as a FileRepository.
func NewFileRepo(db *DB) *FileRepo {
	return &FileRepo{db: db}
}

// List returns catalog entries in insertion order.
func (r *FileRepo) List(ctx context.Context, publicOnly bool) ([]domain.DownloadFile, error) {
	query := "SELECT id, file_path, display_name, COALESCE(description, ''), is_protected, created_at FROM download_files ORDER BY created_at"
	if publicOnly {
		query = "SELECT id, file_path, display_name, COALESCE(description, ''), is_protected, created_at FROM download_files WHERE is_protected = FALSE ORDER BY created_at"
	}

	rows, err := r.db.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DownloadFile
	for rows.Next() {
		var f domain.DownloadFile
		if err := rows.Scan(&f.ID, &f.FilePath, &f.DisplayName, &f.Description, &f.IsProtected, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID retrieves a catalog entry by id. Missing entry is (nil, nil).
func (r *FileRepo) GetByID(ctx context.Context, id string) (*domain.DownloadFile, error) {
	var f domain.DownloadFile
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT id, file_path, display_name, COALESCE(description, ''), is_protected, created_at FROM download_files WHERE id = $1",
		id,
	).Scan(&f.ID, &f.FilePath, &f.DisplayName, &f.Description, &f.IsProtected, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// TokenRepo implements download token persistence on DB.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo wraps a DB as a TokenRepository.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Create inserts a new unused token row.
func (r *TokenRepo) Create(ctx context.Context, t *domain.DownloadToken) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO download_tokens (id, token, file_id, user_id, used, created_at) VALUES ($1, $2, $3, $4, FALSE, $5)",
		t.ID, t.Token, t.FileID, t.UserID, time.Now(),
	)
	return err
}

// Redeem performs the check-and-mark as a single conditional UPDATE guarded
// by the current used value. The database serializes concurrent callers on
// the row, so at most one statement ever matches; a read-then-write pair
// here would let two requests both observe used=false and double-spend.
func (r *TokenRepo) Redeem(ctx context.Context, token string) (string, bool, error) {
	var filePath string
	err := r.db.sql.QueryRowContext(ctx,
		`UPDATE download_tokens dt SET used = TRUE
		 FROM download_files df
		 WHERE dt.token = $1 AND dt.used = FALSE AND df.id = dt.file_id
		 RETURNING df.file_path`,
		token,
	).Scan(&filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return filePath, true, nil
}

// Exists reports whether a token row exists at all, spent or not.
func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM download_tokens WHERE token = $1)",
		token,
	).Scan(&exists)
	return exists, err
}
