// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"filegate/internal/app"
	"filegate/internal/logger"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth         *app.AuthService
	downloads    *app.DownloadService
	mail         *app.MailService
	downloadsDir string
	webDir       string
	log          *logger.Logger
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, downloads *app.DownloadService, mail *app.MailService, downloadsDir, webDir string, log *logger.Logger) *Server {
	return &Server{
		auth:         auth,
		downloads:    downloads,
		mail:         mail,
		downloadsDir: downloadsDir,
		webDir:       webDir,
		log:          log,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("POST /auth/login", s.handleLogin)
	api.HandleFunc("POST /auth/logout", s.handleLogout)
	api.HandleFunc("GET /auth/me", s.handleMe)
	api.HandleFunc("POST /auth/setup", s.handleSetup)

	api.HandleFunc("GET /files", s.handleListFiles)
	api.HandleFunc("POST /files/token", s.handleGenerateToken)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", withNoCache(api)))
	root.HandleFunc("GET /downloads/token/{token}", s.handleDownloadByToken)
	root.HandleFunc("GET /downloads/public/{path...}", s.handleDownloadPublic)
	root.HandleFunc("POST /email", s.handleSendEmail)
	root.Handle("/", spaFromDisk(s.webDir))

	return withCORS(s.loggingMiddleware(root))
}
