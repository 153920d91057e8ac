package server

import (
	"context"
	"net/http"

	"github.com/MariHpf/oauth-app-marius-test/installations"
	"github.com/rs/zerolog/log"
)

// OAuthCallbackHandler completes the install: it trades the code for tokens
// under the browser's session and records which account was connected.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		query := r.URL.Query()

		if errorParam := query.Get("error"); errorParam != "" {
			logger.Warn().
				Str("error", errorParam).
				Str("error_description", query.Get("error_description")).
				Msg("Provider denied authorization")
			http.Error(w, "authorization was not granted", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}

		sessionID, err := s.services.Sessions.Ensure(w, r)
		if err != nil {
			logger.Err(err).Msg("Failed to establish session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		state := query.Get("state")
		switch {
		case state != "":
			if err := s.services.States.Verify(state, sessionID); err != nil {
				logger.Warn().Err(err).Msg("Rejected oauth callback")
				http.Error(w, "invalid state parameter", http.StatusBadRequest)
				return
			}
		case s.config.GetRequireState():
			http.Error(w, "missing state parameter", http.StatusBadRequest)
			return
		}

		resp, err := s.services.Broker.Establish(r.Context(), sessionID, code)
		if err != nil {
			logger.Err(err).Msg("Authorization code exchange failed")
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			return
		}

		s.recordInstallation(r.Context(), sessionID, resp.AccessToken)

		http.Redirect(w, r, RouteHome, http.StatusSeeOther)
	}
}

// recordInstallation maps the connected account to this session so webhooks can find it.
// Failures are logged only; the session is authorized either way.
func (s *Server) recordInstallation(ctx context.Context, sessionID, accessToken string) {
	logger := log.Ctx(ctx)

	info, err := s.services.CRM.GetAccessTokenInfo(ctx, accessToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not resolve the connected account")
		return
	}

	installation := &installations.Installation{
		PortalID:  info.PortalID(),
		SessionID: sessionID,
		HubDomain: info.HubDomain,
		UserEmail: info.User,
		Scopes:    info.Scopes,
	}
	if err := s.services.Installations.Upsert(ctx, installation); err != nil {
		logger.Warn().Err(err).Str("portal_id", installation.PortalID).Msg("Failed to record installation")
		return
	}
	logger.Info().Str("portal_id", installation.PortalID).Str("hub_domain", info.HubDomain).Msg("Account connected")
}
