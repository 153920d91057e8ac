package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/crm"
	"github.com/MariHpf/oauth-app-marius-test/installations"
	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/oauth2"
	"github.com/MariHpf/oauth-app-marius-test/server"
	"github.com/MariHpf/oauth-app-marius-test/sessions"
	"github.com/MariHpf/oauth-app-marius-test/token"
	"github.com/MariHpf/oauth-app-marius-test/token/access"
	"github.com/MariHpf/oauth-app-marius-test/token/refresh"
	"github.com/MariHpf/oauth-app-marius-test/valkeystore"
	"github.com/rs/zerolog/log"
)

const janitorInterval = time.Minute

type stores struct {
	cache         access.Cache
	refreshTokens refresh.Repo
	installations installations.Repo
	close         func()
}

// newStores picks the backend named by STORE_BACKEND. The in-memory cache gets
// a janitor that runs until ctx is cancelled.
func newStores(ctx context.Context, c config.Config) (*stores, error) {
	switch c.GetStoreBackend() {
	case "valkey":
		vk, err := valkeystore.Connect(c)
		if err != nil {
			return nil, err
		}
		log.Info().Str("address", c.GetValkeyAddress()).Msg("Using Valkey store")
		return &stores{
			cache:         valkeystore.NewAccessCache(vk),
			refreshTokens: valkeystore.NewRefreshRepo(vk, c.GetRefreshTokenMaxAge()),
			installations: valkeystore.NewInstallationRepo(vk),
			close:         vk.Close,
		}, nil
	default:
		cache := access.NewInMemoryCache()
		go cache.RunJanitor(ctx, janitorInterval)
		log.Info().Msg("Using in-memory store; tokens are lost on restart")
		return &stores{
			cache:         cache,
			refreshTokens: refresh.NewInMemoryRepo(),
			installations: installations.NewInMemoryRepo(),
			close:         func() {},
		}, nil
	}
}

// logInstallations reports the accounts already connected in the chosen store
// and returns how many there are.
func logInstallations(ctx context.Context, repo installations.Repo) int {
	known, err := repo.List(ctx, 0, 0)
	if err != nil {
		log.Warn().Err(err).Msg("Could not list installations")
		return 0
	}
	for _, installation := range known {
		log.Debug().
			Str("portal_id", installation.PortalID).
			Str("hub_domain", installation.HubDomain).
			Time("installed_at", installation.InstalledAt).
			Msg("Known installation")
	}
	log.Info().Int("installations", len(known)).Msg("Installations loaded")
	return len(known)
}

// newServices wires the broker, provider clients and session handling onto the chosen stores
func newServices(c config.Config, st *stores) (server.Services, error) {
	if c.GetSessionSecret() == "" {
		log.Warn().Msg("SESSION_SECRET is not set; sessions will not survive a restart")
	}
	keys, err := sessions.DeriveKeys(c.GetSessionSecret())
	if err != nil {
		return server.Services{}, fmt.Errorf("[newServices] %w", err)
	}

	httpClient := &http.Client{Timeout: c.GetHTTPTimeout()}
	exchange := oauth2.NewExchangeClient(c, httpClient)

	return server.Services{
		Broker:        token.NewBroker(exchange, st.cache, refresh.NewManager(st.refreshTokens, c), c),
		Provider:      exchange,
		CRM:           crm.NewClient(c.GetAPIBaseURL(), httpClient),
		Installations: st.installations,
		Sessions:      sessions.NewManager(c, keys),
		States:        oauth2.NewStateSigner(keys.StateKey, c.GetStateTTL()),
	}, nil
}
