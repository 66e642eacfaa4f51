package server

import (
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

// SessionAuth authenticates the request from its session cookie and installs
// the principal and page attributes on the request context. Anonymous
// requests pass through; access-denied requests stop here with 403.
func (s *Server) SessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := s.auth.Authenticate(w, r)
		if apperrors.Is(err, apperrors.ErrAccessDenied) {
			s.writeError(w, r, http.StatusForbidden, "Access is denied")
			return
		}
		if err != nil {
			log.Err(err).Str("path", r.URL.Path).Msg("authentication failed")
			s.writeError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := session.WithAuthentication(r.Context(), result.Authentication)
		ctx = session.WithAttributes(ctx, result.Attributes)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin rejects anonymous requests: pages are redirected to the login
// page, API calls get 401.
func (s *Server) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()).IsAuthenticated() {
			next.ServeHTTP(w, r)
			return
		}
		if s.auth.IsAPIPath(r.URL.Path) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "Login required"})
			return
		}
		target := RouteLogin + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if s.auth.IsAPIPath(r.URL.Path) {
		writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
		return
	}
	http.Error(w, message, status)
}
