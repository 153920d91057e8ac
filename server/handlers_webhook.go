package server

import (
	"context"
	"io"
	"net/http"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/webhooks"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

// WebhookHandler acknowledges every authenticated delivery with 200 and
// fetches the changed object on a best-effort basis.
func (s *Server) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read webhook body")
			w.WriteHeader(http.StatusOK)
			return
		}

		if s.verifier != nil {
			if err := s.verifier.Verify(r, body); err != nil {
				logger.Warn().Err(err).Msg("Rejected webhook delivery")
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
		}

		events, err := webhooks.Parse(body)
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring malformed webhook delivery")
			w.WriteHeader(http.StatusOK)
			return
		}

		event := events[0]
		sessionID, ok := s.resolveSession(r, event)
		if !ok {
			logger.Warn().Str("object_id", event.ObjectID.String()).Str("portal_id", event.Portal()).Msg("No session can serve webhook event")
			w.WriteHeader(http.StatusOK)
			return
		}

		s.fetchChangedObject(r.Context(), sessionID, event)
		w.WriteHeader(http.StatusOK)
	}
}

// resolveSession prefers the installation registered for the event's account and
// falls back to the caller's own session cookie.
func (s *Server) resolveSession(r *http.Request, event webhooks.Event) (string, bool) {
	logger := log.Ctx(r.Context())

	if portalID := event.Portal(); portalID != "" {
		installation, err := s.services.Installations.Get(r.Context(), portalID)
		if err == nil {
			return installation.SessionID, true
		}
		if !errors.Is(err, errors.ErrNotFound) {
			logger.Err(err).Str("portal_id", portalID).Msg("Installation lookup failed")
		}
	}

	sessionID, ok := s.services.Sessions.ID(r)
	if ok {
		logger.Warn().Msg("Routing webhook event by request session cookie")
	}
	return sessionID, ok
}

func (s *Server) fetchChangedObject(ctx context.Context, sessionID string, event webhooks.Event) {
	logger := log.Ctx(ctx).With().Str("object_id", event.ObjectID.String()).Logger()

	accessToken, err := s.services.Broker.GetToken(ctx, sessionID)
	if err != nil {
		logger.Err(err).Msg("No access token for webhook event")
		return
	}

	contact, err := s.services.CRM.GetContact(ctx, accessToken, event.ObjectID.String())
	if err != nil {
		logger.Err(err).Msg("Failed to fetch changed contact")
		return
	}
	logger.Info().
		Str("subscription_type", event.SubscriptionType).
		Time("updated_at", contact.UpdatedAt).
		Msg("Fetched changed contact")
}
