package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/rs/zerolog/log"
)

const devEnv = "DEV"

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	appName   string
	apiPath   string
	router    chi.Router
	auth      *auth.Service
	metrics   *metrics.Recorder
	loginTmpl *template.Template
	pageTmpl  *template.Template
}

func New(cfg config.Config, authService *auth.Service, recorder *metrics.Recorder) (*Server, error) {
	if authService == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("[Server New] metrics recorder is required")
	}

	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse login template: %w", err)
	}
	pageTmpl, err := ParseTemplate("page.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse page template: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		appName:   cfg.GetAppName(),
		apiPath:   cfg.GetBaseAPIPath(),
		auth:      authService,
		metrics:   recorder,
		loginTmpl: loginTmpl,
		pageTmpl:  pageTmpl,
	}
	s.router = s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != devEnv {
		return
	}
	err := chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Info().Msgf("[ %-16s ] %s", colourMethod(method), route)
		return nil
	})
	if err != nil {
		log.Err(err).Msg("failed to list routes")
	}
}
