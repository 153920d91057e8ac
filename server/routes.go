package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("POST "+RouteWebhook, ChainMiddleware(s.WebhookHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
}

// HealthHandler is a liveness probe
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
