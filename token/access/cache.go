// Package access holds the short-lived access tokens issued by the CRM provider,
// keyed by session identifier.
package access

import (
	"context"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Cache maps a session identifier to an access token that expires on its own.
// A miss (ErrNotFound) is the broker's signal to run a refresh exchange.
type Cache interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, accessToken string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
