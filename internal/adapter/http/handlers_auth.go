package adapthttp

import (
	"errors"
	"net/http"

	"filegate/internal/app"
)

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err != nil {
		s.log.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "Internal error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Logged in successfully"})
}

// handleLogout destroys the session unconditionally and always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			s.log.Error("logout failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, err := s.currentSession(r)
	if err != nil {
		s.log.Error("session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if session == nil {
		writeJSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: "Not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":       session.UserID,
		"username": session.Username,
	})
}

// handleSetup creates the first account. Refused once any user exists.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	id, err := s.auth.CreateInitialUser(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, app.ErrSetupComplete):
		writeError(w, http.StatusConflict, "setup already complete")
		return
	case errors.Is(err, app.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "username already exists")
		return
	case err != nil:
		s.log.Error("setup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
