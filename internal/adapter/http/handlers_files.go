package adapthttp

import (
	"errors"
	"net/http"

	"filegate/internal/app"
	"filegate/internal/domain"
)

type fileResponse struct {
	ID          string `json:"id"`
	FilePath    string `json:"file_path"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	IsProtected bool   `json:"is_protected"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	session, err := s.currentSession(r)
	if err != nil {
		s.log.Error("session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	files, err := s.downloads.ListFiles(r.Context(), session != nil)
	if err != nil {
		s.log.Error("listing files failed", "error", err)
		writeError(w, http.StatusInternalServerError, "error listing files")
		return
	}

	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func toFileResponse(f domain.DownloadFile) fileResponse {
	return fileResponse{
		ID:          f.ID,
		FilePath:    f.FilePath,
		DisplayName: f.DisplayName,
		Description: f.Description,
		IsProtected: f.IsProtected,
	}
}

func (s *Server) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	session, err := s.currentSession(r)
	if err != nil {
		s.log.Error("session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if session == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		FileID string `json:"file_id"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	grant, err := s.downloads.GenerateToken(r.Context(), session.UserID, req.FileID)
	switch {
	case errors.Is(err, app.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "file not found")
		return
	case err != nil:
		s.log.Error("token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":        grant.Token,
		"download_url": grant.DownloadURL,
	})
}
