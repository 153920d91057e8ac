package valkeystore

import (
	"context"
	"fmt"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/token/access"
	"github.com/valkey-io/valkey-go"
)

var _ access.Cache = (*AccessCache)(nil)

// AccessCache stores access tokens with a server-side expiry
type AccessCache struct {
	vk valkey.Client
}

func NewAccessCache(vk valkey.Client) *AccessCache {
	return &AccessCache{vk: vk}
}

func (c *AccessCache) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := c.vk.Do(ctx, c.vk.B().Get().Key(accessTokenPrefix+sessionID).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading access token from Valkey: %w", err)
	}
	return token, nil
}

func (c *AccessCache) Set(ctx context.Context, sessionID, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	cmd := c.vk.B().Set().Key(accessTokenPrefix + sessionID).Value(accessToken).Ex(ttl).Build()
	if err := c.vk.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("storing access token in Valkey: %w", err)
	}
	return nil
}

func (c *AccessCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.vk.Do(ctx, c.vk.B().Del().Key(accessTokenPrefix+sessionID).Build()).Error(); err != nil {
		return fmt.Errorf("deleting access token from Valkey: %w", err)
	}
	return nil
}
