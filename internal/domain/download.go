package domain

import (
	"context"
	"time"
)

// DownloadFile is a catalog entry for a downloadable file. FilePath is
// relative to the configured downloads root and is never caller-supplied.
type DownloadFile struct {
	ID          string
	FilePath    string
	DisplayName string
	Description string
	IsProtected bool
	CreatedAt   time.Time
}

// DownloadToken is a single-use bearer token for one protected file.
// A token transitions used=false to used=true at most once, ever.
// Rows are kept after redemption as an audit trail.
type DownloadToken struct {
	ID        string
	Token     string
	FileID    string
	UserID    string
	Used      bool
	CreatedAt time.Time
}

// FileRepository defines the port for the download catalog.
type FileRepository interface {
	// List returns catalog entries in insertion order. When publicOnly is
	// true, protected entries are filtered out.
	List(ctx context.Context, publicOnly bool) ([]DownloadFile, error)
	GetByID(ctx context.Context, id string) (*DownloadFile, error)
}

// TokenRepository defines the port for download token persistence.
type TokenRepository interface {
	Create(ctx context.Context, t *DownloadToken) error
	// Redeem atomically marks the token used and returns the associated
	// file path. The check and the mark must be one indivisible operation:
	// two concurrent calls for the same token must never both succeed.
	// Returns (path, true, nil) on success and ("", false, nil) when the
	// token does not exist or was already used; the caller disambiguates
	// with Exists.
	Redeem(ctx context.Context, token string) (filePath string, ok bool, err error)
	Exists(ctx context.Context, token string) (bool, error)
}
