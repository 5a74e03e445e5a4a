package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"filegate/internal/app"
	"filegate/internal/domain"
)

const sessionCookie = "session"

// currentSession resolves the caller's session cookie, if any. Returns nil
// for anonymous callers; handlers decide whether that is an error.
func (s *Server) currentSession(r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	session, err := s.auth.WhoAmI(r.Context(), cookie.Value)
	if errors.Is(err, app.ErrNotAuthenticated) {
		// Stale cookie: treat as anonymous.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// withCORS mirrors the permissive policy the SPA expects: any origin with
// credentials, long preflight cache.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "31536000")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
