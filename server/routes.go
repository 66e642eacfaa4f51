package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) initRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.LoggingMiddleware,
		middleware.Recoverer,
		s.FrameSecurityMiddleware,
	)

	r.Get(RouteIndex, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteMainPage, http.StatusFound)
	})
	r.Get(RouteLogin, s.LoginPageHandler())
	r.Method(http.MethodGet, RouteMetrics, s.metrics.Handler())

	r.Route(s.apiPath, func(r chi.Router) {
		r.Post(APIRouteLogin, s.LoginHandler())
		r.Get(APIRouteLogout, s.LogoutHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.SessionAuth, s.RequireLogin)
			r.Get(APIRouteSession, s.SessionHandler())
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.SessionAuth, s.RequireLogin)
		r.Get(RoutePages+"/*", s.PageHandler())
	})

	return r
}
