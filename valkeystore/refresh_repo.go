package valkeystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/token/refresh"
	"github.com/valkey-io/valkey-go"
)

var _ refresh.Repo = (*RefreshRepo)(nil)

// RefreshRepo stores refresh tokens as JSON. With a positive maxAge the keys
// also expire server side.
type RefreshRepo struct {
	vk     valkey.Client
	maxAge time.Duration
}

func NewRefreshRepo(vk valkey.Client, maxAge time.Duration) *RefreshRepo {
	return &RefreshRepo{vk: vk, maxAge: maxAge}
}

func (r *RefreshRepo) Upsert(ctx context.Context, refreshToken *refresh.StoredRefreshToken) error {
	if refreshToken == nil || refreshToken.SessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if refreshToken.Token == "" {
		return errors.ErrInvalidRefreshToken
	}

	payload, err := json.Marshal(refreshToken)
	if err != nil {
		return fmt.Errorf("encoding refresh token: %w", err)
	}

	key := refreshTokenPrefix + refreshToken.SessionID
	var cmd valkey.Completed
	if r.maxAge > 0 {
		cmd = r.vk.B().Set().Key(key).Value(string(payload)).Ex(r.maxAge).Build()
	} else {
		cmd = r.vk.B().Set().Key(key).Value(string(payload)).Build()
	}
	if err := r.vk.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("storing refresh token in Valkey: %w", err)
	}
	return nil
}

func (r *RefreshRepo) Get(ctx context.Context, sessionID string) (*refresh.StoredRefreshToken, error) {
	payload, err := r.vk.Do(ctx, r.vk.B().Get().Key(refreshTokenPrefix+sessionID).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading refresh token from Valkey: %w", err)
	}

	var rt refresh.StoredRefreshToken
	if err := json.Unmarshal(payload, &rt); err != nil {
		return nil, fmt.Errorf("decoding refresh token: %w", err)
	}
	return &rt, nil
}

func (r *RefreshRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.vk.Do(ctx, r.vk.B().Del().Key(refreshTokenPrefix+sessionID).Build()).Error(); err != nil {
		return fmt.Errorf("deleting refresh token from Valkey: %w", err)
	}
	return nil
}
