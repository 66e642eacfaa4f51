package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LoginRequest is the body of the API login call.
type LoginRequest struct {
	UserCd string `json:"userCd"`
	UserPs string `json:"userPs"`
}

// SessionResponse describes the authenticated user to API clients.
type SessionResponse struct {
	LoginUser     json.RawMessage       `json:"loginUser"`
	ScriptSession session.ScriptSession `json:"scriptSession"`
}

type LoginPageData struct {
	AppName  string
	LoginAPI string
	Redirect string
	Error    string
}

type PageData struct {
	AppName       string
	PageName      string
	PageRemark    string
	LogoutAPI     string
	ScriptSession template.JS
	MenuJSON      template.JS
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:  s.appName,
			LoginAPI: s.apiPath + APIRouteLogin,
			Redirect: localRedirect(r.URL.Query().Get("redirect")),
			Error:    r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginHandler checks the posted credentials and starts a session
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Malformed login request"})
			return
		}
		if strings.TrimSpace(req.UserCd) == "" || req.UserPs == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "userCd and userPs are required"})
			return
		}

		authed, err := s.auth.Login(w, r, req.UserCd, req.UserPs)
		switch {
		case apperrors.Is(err, apperrors.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_credentials", Message: "Invalid user or password"})
			return
		case apperrors.Is(err, apperrors.ErrUserBlocked):
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "user_blocked", Message: "This account is disabled"})
			return
		case err != nil:
			log.Err(err).Str("userCd", req.UserCd).Msg("login failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
			return
		}

		user, _ := session.FromContext(authed.Context()).User()
		writeJSON(w, http.StatusOK, session.NewScriptSession(user))
	}
}

// LogoutHandler ends the session and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(w, r)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// SessionHandler returns the session user of an authenticated API call
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := session.FromContext(r.Context()).User()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		loginUser, err := json.Marshal(user)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{
			LoginUser:     loginUser,
			ScriptSession: session.NewScriptSession(user),
		})
	}
}

// PageHandler renders the console page shell with the attributes set by
// SessionAuth
func (s *Server) PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attrs := session.AttributesFromContext(r.Context())
		data := PageData{
			AppName:       s.appName,
			PageName:      attrs.String(session.AttrPageName),
			PageRemark:    attrs.String(session.AttrPageRemark),
			LogoutAPI:     s.apiPath + APIRouteLogout,
			ScriptSession: template.JS(attrs.String(session.AttrScriptSession)),
			MenuJSON:      template.JS(attrs.String(session.AttrMenuJSON)),
		}
		if data.PageName == "" {
			data.PageName = s.appName
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.pageTmpl.Execute(w, data); err != nil {
			log.Err(err).Str("path", r.URL.Path).Msg("Failed to render page template")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write JSON response")
	}
}

// localRedirect keeps post-login redirects on this site.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return RouteMainPage
	}
	return target
}
