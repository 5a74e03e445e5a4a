package app

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"filegate/internal/domain"
)

var (
	// ErrFileNotFound indicates the requested file id is not in the catalog.
	ErrFileNotFound = errors.New("file not found")
	// ErrTokenNotFound indicates an unknown download token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenUsed indicates a download token that was already redeemed.
	ErrTokenUsed = errors.New("token already used")
)

// TokenGrant is the result of a token request: either a token bound to a
// protected file, or a direct URL with an empty token for a public one.
type TokenGrant struct {
	Token       string
	DownloadURL string
}

// DownloadService filters the catalog by caller identity and manages
// single-use download tokens for protected files.
type DownloadService struct {
	files  domain.FileRepository
	tokens domain.TokenRepository
}

// NewDownloadService creates a new download access control service.
func NewDownloadService(files domain.FileRepository, tokens domain.TokenRepository) *DownloadService {
	return &DownloadService{files: files, tokens: tokens}
}

// ListFiles returns the catalog visible to the caller: public entries only
// for anonymous callers, everything for authenticated ones.
func (s *DownloadService) ListFiles(ctx context.Context, authenticated bool) ([]domain.DownloadFile, error) {
	return s.files.List(ctx, !authenticated)
}

// GenerateToken issues a single-use token for a protected file. Public
// files short-circuit to a direct URL without creating a token row:
// protection, not authentication, decides whether a token is needed.
func (s *DownloadService) GenerateToken(ctx context.Context, userID, fileID string) (*TokenGrant, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}

	if !file.IsProtected {
		return &TokenGrant{DownloadURL: "/downloads/public/" + escapePath(file.FilePath)}, nil
	}

	t := &domain.DownloadToken{
		ID:     uuid.NewString(),
		Token:  uuid.NewString(),
		FileID: file.ID,
		UserID: userID,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return nil, err
	}
	return &TokenGrant{Token: t.Token, DownloadURL: "/downloads/token/" + url.PathEscape(t.Token)}, nil
}

// escapePath escapes each segment of a slash-separated catalog path so the
// resulting URL survives spaces and fragment characters in file names.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// RedeemToken atomically marks the token used and returns the file path to
// stream. The mark sticks even if the subsequent stream fails; single use
// means exactly one redemption, not one successful download. A second
// redemption fails with ErrTokenUsed, an unknown token with ErrTokenNotFound.
func (s *DownloadService) RedeemToken(ctx context.Context, token string) (string, error) {
	filePath, ok, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return "", err
	}
	if ok {
		return filePath, nil
	}

	// Zero rows affected: either spent or never issued.
	exists, err := s.tokens.Exists(ctx, token)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrTokenUsed
	}
	return "", ErrTokenNotFound
}
