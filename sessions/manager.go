// Package sessions identifies browsers with an opaque id kept in an encrypted cookie.
package sessions

import (
	"net/http"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const sessionIDKey = "sid"

type Manager struct {
	store *sessions.CookieStore
	name  string
}

func NewManager(cfg config.SecurityConfig, keys Keys) *Manager {
	store := sessions.NewCookieStore(keys.HashKey, keys.BlockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.GetMaxSessionAge().Seconds()),
		Secure:   cfg.GetSecureCookies(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)
	return &Manager{
		store: store,
		name:  cfg.GetSessionCookieName(),
	}
}

// ID returns the session id carried by the request, if any
func (m *Manager) ID(r *http.Request) (string, bool) {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return "", false
	}
	id, ok := session.Values[sessionIDKey].(string)
	return id, ok && id != ""
}

// Ensure returns the request's session id, minting and saving a new one when
// the cookie is absent or unreadable.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		// A cookie signed with an old key decodes to a fresh session; carry on with it.
		log.Debug().Err(err).Msg("Discarding unreadable session cookie")
	}
	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[sessionIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", errors.Wrapf(err, "[Manager Ensure] save session")
	}
	return id, nil
}
