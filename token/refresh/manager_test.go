package refresh_test

import (
	"context"
	"testing"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/token/refresh"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := refresh.NewInMemoryRepo()

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.Get(ctx, "session-1")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &refresh.StoredRefreshToken{SessionID: "session-1", Token: "RT1"}))
		require.NoError(t, repo.Upsert(ctx, &refresh.StoredRefreshToken{SessionID: "session-1", Token: "RT2"}))
		rt, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Equal(t, "RT2", rt.Token)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		rt, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		rt.Token = "tampered"
		again, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Equal(t, "RT2", again.Token)
	})

	t.Run("rejects empty values", func(t *testing.T) {
		require.Error(t, repo.Upsert(ctx, nil))
		require.Error(t, repo.Upsert(ctx, &refresh.StoredRefreshToken{Token: "RT"}))
		require.ErrorIs(t, repo.Upsert(ctx, &refresh.StoredRefreshToken{SessionID: "s"}), errors.ErrInvalidRefreshToken)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "session-1"))
		_, err := repo.Get(ctx, "session-1")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	t.Run("no max age keeps tokens forever", func(t *testing.T) {
		t.Setenv("REFRESH_TOKEN_MAX_AGE", "")
		m := refresh.NewManager(refresh.NewInMemoryRepo(), config.OAuth{})
		require.NoError(t, m.Save(ctx, "session-1", "RT1"))
		require.True(t, m.Exists(ctx, "session-1"))

		now = now.Add(365 * 24 * time.Hour)
		rt, err := m.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Equal(t, "RT1", rt.Token)
	})

	t.Run("stale token is evicted", func(t *testing.T) {
		t.Setenv("REFRESH_TOKEN_MAX_AGE", "1h")
		repo := refresh.NewInMemoryRepo()
		m := refresh.NewManager(repo, config.OAuth{})
		require.NoError(t, m.Save(ctx, "session-1", "RT1"))

		now = now.Add(61 * time.Minute)
		_, err := m.Get(ctx, "session-1")
		require.ErrorIs(t, err, errors.ErrRefreshTokenExpired)
		require.False(t, m.Exists(ctx, "session-1"))

		_, err = repo.Get(ctx, "session-1")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("save propagates repo errors", func(t *testing.T) {
		m := refresh.NewManager(refresh.NewInMemoryRepo(), config.OAuth{})
		err := m.Save(ctx, "", "RT1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to store refresh token")
	})
}
