package adapthttp

import (
	"errors"
	"net/http"

	"filegate/internal/app"
)

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender    string `json:"sender"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Message   string `json:"message"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := s.mail.Send(r.Context(), req.Sender, req.FirstName, req.LastName, req.Message)
	if errors.Is(err, app.ErrMailNotConfigured) {
		s.log.Error("mail api key not configured")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.log.Error("sending email failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"data": true})
}
