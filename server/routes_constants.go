package server

// Route path constants
const (
	RouteIndex   = "/"
	RouteLogin   = "/login"
	RoutePages   = "/pages"
	RouteMetrics = "/metrics"

	// Relative to the base API path
	APIRouteLogin   = "/login"
	APIRouteLogout  = "/logout"
	APIRouteSession = "/v1/session"

	// RouteMainPage is where the index and a successful login land.
	RouteMainPage = RoutePages + "/main"
)
