package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MariHpf/oauth-app-marius-test/crm"
	"github.com/MariHpf/oauth-app-marius-test/installations"
	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/oauth2"
	"github.com/MariHpf/oauth-app-marius-test/sessions"
	"github.com/MariHpf/oauth-app-marius-test/token"
	"github.com/MariHpf/oauth-app-marius-test/webhooks"
	"github.com/rs/zerolog/log"
)

// CRM is the subset of the CRM API the handlers read from
type CRM interface {
	ListContacts(ctx context.Context, accessToken string, opts crm.ListOptions) (*crm.ContactPage, error)
	SearchContacts(ctx context.Context, accessToken string, req crm.SearchRequest) (*crm.SearchResult, error)
	GetContact(ctx context.Context, accessToken, contactID string, properties ...string) (*crm.Contact, error)
	GetAccessTokenInfo(ctx context.Context, accessToken string) (*crm.TokenInfo, error)
}

// Authorizer builds the provider's consent URL
type Authorizer interface {
	AuthCodeURL(state string) string
}

type Services struct {
	Broker        *token.Broker
	Provider      Authorizer
	CRM           CRM
	Installations installations.Repo
	Sessions      *sessions.Manager
	States        *oauth2.StateSigner
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	services Services
	verifier *webhooks.Verifier // nil when signature checks are off
}

func New(config config.Config, services Services) *Server {
	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		services: services,
	}
	if config.GetVerifyWebhookSignature() {
		s.verifier = webhooks.NewVerifier(config.GetClientSecret(), config.GetWebhookMaxAge())
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
