package server

// Route path constants
const (
	RouteHome          = "/"
	RouteOAuthCallback = "/oauth-callback"
	RouteWebhook       = "/submit"
	RouteHealth        = "/healthz"
)
