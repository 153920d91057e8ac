package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token storage and rotation for sessions
type Manager struct {
	repo   Repo
	config config.OAuthConfig
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.OAuthConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Save records the refresh token for a session, replacing any previous one
func (m *Manager) Save(ctx context.Context, sessionID, token string) error {
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		SessionID: sessionID,
		Token:     token,
		UpdatedAt: NowTimeFunc(),
	}); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Get returns the refresh token for a session. A token older than the configured
// max age is deleted and reported as errors.ErrRefreshTokenExpired.
func (m *Manager) Get(ctx context.Context, sessionID string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if m.IsExpired(rt) {
		if err := m.repo.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to delete expired refresh token: %w", err)
		}
		return nil, errors.ErrRefreshTokenExpired
	}
	return rt, nil
}

// Exists reports whether a usable refresh token is on file for the session
func (m *Manager) Exists(ctx context.Context, sessionID string) bool {
	_, err := m.Get(ctx, sessionID)
	return err == nil
}

// Delete removes a session's refresh token
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.repo.Delete(ctx, sessionID)
}

// IsExpired checks the token against the configured max age; zero means no limit
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	maxAge := m.config.GetRefreshTokenMaxAge()
	if maxAge <= 0 {
		return false
	}
	return NowTimeFunc().Sub(rt.UpdatedAt) > maxAge
}
