package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the refresh token on file for one session.
// It is overwritten on every successful exchange since providers may rotate it.
type StoredRefreshToken struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repo stores one refresh token per session identifier.
// Get returns errors.ErrNotFound when the session has no token on file.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Get(ctx context.Context, sessionID string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, sessionID string) error
}
