// Package token turns a session identifier into a usable CRM access token.
//
// The broker answers from the access token cache when it can and otherwise
// runs a refresh-token exchange, writing the rotated refresh token and the new
// access token back before returning. Concurrent misses for one session share
// a single exchange.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/oauth2"
	"github.com/MariHpf/oauth-app-marius-test/token/access"
	"github.com/MariHpf/oauth-app-marius-test/token/refresh"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Exchanger performs the two token grants against the provider
type Exchanger interface {
	ExchangeAuthorizationCode(ctx context.Context, code string) (*oauth2.TokenResponse, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)
}

type Broker struct {
	exchanger     Exchanger
	cache         access.Cache
	refreshTokens *refresh.Manager
	accessTTL     time.Duration

	// refreshes collapses concurrent cache misses for the same session into one exchange
	refreshes singleflight.Group
}

func NewBroker(exchanger Exchanger, cache access.Cache, refreshTokens *refresh.Manager, cfg config.OAuthConfig) *Broker {
	return &Broker{
		exchanger:     exchanger,
		cache:         cache,
		refreshTokens: refreshTokens,
		accessTTL:     cfg.GetAccessTokenTTL(),
	}
}

// IsAuthorized reports whether a refresh token is on file for the session
func (b *Broker) IsAuthorized(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	return b.refreshTokens.Exists(ctx, sessionID)
}

// GetToken returns a valid access token for the session. Without a refresh token
// on file it fails with errors.ErrUnauthorized and makes no network call.
func (b *Broker) GetToken(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.ErrUnauthorized
	}

	accessToken, err := b.cache.Get(ctx, sessionID)
	if err == nil {
		return accessToken, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		log.Warn().Err(err).Str("session", shortID(sessionID)).Msg("Access token cache read failed, refreshing")
	}

	// The exchange runs detached from the first caller's cancellation since other callers may share it.
	v, err, shared := b.refreshes.Do(sessionID, func() (any, error) {
		return b.refresh(context.WithoutCancel(ctx), sessionID)
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Debug().Str("session", shortID(sessionID)).Msg("Shared in-flight token refresh")
	}
	return v.(string), nil
}

func (b *Broker) refresh(ctx context.Context, sessionID string) (string, error) {
	// Another caller may have completed a refresh between our cache miss and now.
	if accessToken, err := b.cache.Get(ctx, sessionID); err == nil {
		return accessToken, nil
	}

	rt, err := b.refreshTokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errors.ErrRefreshTokenExpired) {
			return "", fmt.Errorf("%w: %w", errors.ErrUnauthorized, err)
		}
		return "", fmt.Errorf("[Broker refresh] load refresh token: %w", err)
	}

	resp, err := b.exchanger.ExchangeRefreshToken(ctx, rt.Token)
	if err != nil {
		log.Err(err).Str("session", shortID(sessionID)).Msg("Refresh token exchange failed")
		return "", err
	}

	if err := b.store(ctx, sessionID, resp, rt.Token); err != nil {
		return "", err
	}

	log.Debug().Str("session", shortID(sessionID)).Msg("Access token refreshed")
	return resp.AccessToken, nil
}

// Establish runs the authorization-code grant for a session and records the
// resulting token pair. It is the only way a session becomes authorized.
func (b *Broker) Establish(ctx context.Context, sessionID, code string) (*oauth2.TokenResponse, error) {
	if sessionID == "" {
		return nil, errors.ErrSessionNotFound
	}

	resp, err := b.exchanger.ExchangeAuthorizationCode(ctx, code)
	if err != nil {
		log.Err(err).Str("session", shortID(sessionID)).Msg("Authorization code exchange failed")
		return nil, err
	}
	if resp.RefreshToken == "" {
		return nil, fmt.Errorf("%w: provider returned no refresh token", errors.ErrTokenExchange)
	}

	if err := b.store(ctx, sessionID, resp, ""); err != nil {
		return nil, err
	}
	return resp, nil
}

// store writes the refresh token before the access token so a cached access
// token never exists without a refresh token behind it.
func (b *Broker) store(ctx context.Context, sessionID string, resp *oauth2.TokenResponse, previousRefreshToken string) error {
	refreshToken := resp.RefreshToken
	if refreshToken == "" {
		refreshToken = previousRefreshToken
	}

	if err := b.refreshTokens.Save(ctx, sessionID, refreshToken); err != nil {
		return fmt.Errorf("[Broker store] %w", err)
	}
	if err := b.cache.Set(ctx, sessionID, resp.AccessToken, b.accessTTL); err != nil {
		return fmt.Errorf("[Broker store] cache access token: %w", err)
	}
	return nil
}

// shortID keeps session identifiers out of the logs in full
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
