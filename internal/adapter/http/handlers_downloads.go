package adapthttp

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"filegate/internal/app"
	"filegate/internal/fsutil"
)

// handleDownloadByToken redeems a single-use token and streams the file.
// The token is spent the moment the conditional update lands; a failed
// stream afterwards does not revive it.
func (s *Server) handleDownloadByToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	filePath, err := s.downloads.RedeemToken(r.Context(), token)
	switch {
	case errors.Is(err, app.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, "invalid or expired token")
		return
	case errors.Is(err, app.ErrTokenUsed):
		writeError(w, http.StatusGone, "token has already been used")
		return
	case err != nil:
		s.log.Error("token redemption failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.serveFile(w, r, filePath)
}

// handleDownloadPublic streams a public file addressed by catalog-relative
// path, subject to the same sanitization and containment rules as token
// downloads.
func (s *Server) handleDownloadPublic(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, r.PathValue("path"))
}

// serveFile sanitizes requestedPath, resolves it inside the downloads root,
// and streams it with a download disposition.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, requestedPath string) {
	target, err := fsutil.ResolveWithinRoot(s.downloadsDir, requestedPath)
	switch {
	case errors.Is(err, fsutil.ErrMalformedPath):
		s.log.Warn("invalid download path requested", "path", requestedPath)
		writeError(w, http.StatusBadRequest, "invalid file path")
		return
	case errors.Is(err, fsutil.ErrOutsideRoot):
		s.log.Warn("path traversal attempt detected", "path", requestedPath, "remote", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "access denied")
		return
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "file not found")
		return
	case err != nil:
		s.log.Error("resolving download path failed", "path", requestedPath, "error", err)
		writeError(w, http.StatusInternalServerError, "error reading file")
		return
	}

	f, err := os.Open(target)
	if err != nil {
		s.log.Error("opening file failed", "path", target, "error", err)
		writeError(w, http.StatusInternalServerError, "error reading file")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(target)))
	http.ServeContent(w, r, filepath.Base(target), info.ModTime(), f)
}
