package token_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/oauth2"
	"github.com/MariHpf/oauth-app-marius-test/token"
	"github.com/MariHpf/oauth-app-marius-test/token/access"
	"github.com/MariHpf/oauth-app-marius-test/token/refresh"
	"github.com/stretchr/testify/require"
)

const testSessionID = "session-0123456789"

// fakeExchanger hands out numbered token pairs and counts calls per grant
type fakeExchanger struct {
	codeCalls    atomic.Int32
	refreshCalls atomic.Int32
	lastRefresh  atomic.Value

	err              error
	omitRefreshToken bool
	release          chan struct{} // when set, refresh exchanges block until closed
}

func (f *fakeExchanger) ExchangeAuthorizationCode(_ context.Context, code string) (*oauth2.TokenResponse, error) {
	n := f.codeCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.TokenResponse{AccessToken: fmt.Sprintf("AT%d", n), RefreshToken: fmt.Sprintf("RT%d", n)}, nil
}

func (f *fakeExchanger) ExchangeRefreshToken(_ context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	n := f.refreshCalls.Add(1)
	f.lastRefresh.Store(refreshToken)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := &oauth2.TokenResponse{AccessToken: fmt.Sprintf("refreshed-AT%d", n)}
	if !f.omitRefreshToken {
		resp.RefreshToken = fmt.Sprintf("refreshed-RT%d", n)
	}
	return resp, nil
}

type brokerFixture struct {
	exchanger *fakeExchanger
	cache     *access.InMemoryCache
	repo      *refresh.InMemoryRepo
	broker    *token.Broker
}

func setupBroker(t *testing.T) *brokerFixture {
	t.Helper()
	t.Setenv("REFRESH_TOKEN_MAX_AGE", "")

	f := &brokerFixture{
		exchanger: &fakeExchanger{},
		cache:     access.NewInMemoryCache(),
		repo:      refresh.NewInMemoryRepo(),
	}
	f.broker = token.NewBroker(f.exchanger, f.cache, refresh.NewManager(f.repo, config.OAuth{}), config.OAuth{})
	return f
}

func (f *brokerFixture) seedRefreshToken(t *testing.T, sessionID, rt string) {
	t.Helper()
	require.NoError(t, f.repo.Upsert(context.Background(), &refresh.StoredRefreshToken{SessionID: sessionID, Token: rt}))
}

func TestBroker_GetToken(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit makes no network call", func(t *testing.T) {
		f := setupBroker(t)
		f.seedRefreshToken(t, testSessionID, "RT1")
		require.NoError(t, f.cache.Set(ctx, testSessionID, "AT1", 600*time.Second))

		accessToken, err := f.broker.GetToken(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "AT1", accessToken)
		require.Zero(t, f.exchanger.refreshCalls.Load())
	})

	t.Run("no refresh token fails without network call", func(t *testing.T) {
		f := setupBroker(t)

		_, err := f.broker.GetToken(ctx, testSessionID)
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		require.Zero(t, f.exchanger.refreshCalls.Load())

		_, err = f.broker.GetToken(ctx, "")
		require.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("miss refreshes once and repopulates both stores", func(t *testing.T) {
		f := setupBroker(t)
		f.seedRefreshToken(t, testSessionID, "RT1")

		accessToken, err := f.broker.GetToken(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "refreshed-AT1", accessToken)
		require.EqualValues(t, 1, f.exchanger.refreshCalls.Load())
		require.Equal(t, "RT1", f.exchanger.lastRefresh.Load())

		rt, err := f.repo.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "refreshed-RT1", rt.Token)

		cached, err := f.cache.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "refreshed-AT1", cached)

		// Second call is served from the cache.
		_, err = f.broker.GetToken(ctx, testSessionID)
		require.NoError(t, err)
		require.EqualValues(t, 1, f.exchanger.refreshCalls.Load())
	})

	t.Run("expired entry triggers refresh", func(t *testing.T) {
		f := setupBroker(t)
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		access.NowTimeFunc = func() time.Time { return now }
		t.Cleanup(func() { access.NowTimeFunc = time.Now })

		f.seedRefreshToken(t, testSessionID, "RT1")
		require.NoError(t, f.cache.Set(ctx, testSessionID, "AT1", 600*time.Second))

		now = now.Add(600 * time.Second)
		accessToken, err := f.broker.GetToken(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "refreshed-AT1", accessToken)
		require.EqualValues(t, 1, f.exchanger.refreshCalls.Load())
	})

	t.Run("exchange failure stores nothing", func(t *testing.T) {
		f := setupBroker(t)
		f.exchanger.err = fmt.Errorf("%w: boom", errors.ErrTokenExchange)
		f.seedRefreshToken(t, testSessionID, "RT1")

		_, err := f.broker.GetToken(ctx, testSessionID)
		require.ErrorIs(t, err, errors.ErrTokenExchange)
		require.EqualValues(t, 1, f.exchanger.refreshCalls.Load())

		_, err = f.cache.Get(ctx, testSessionID)
		require.ErrorIs(t, err, errors.ErrNotFound)
		rt, err := f.repo.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "RT1", rt.Token)
	})

	t.Run("keeps old refresh token when provider does not rotate", func(t *testing.T) {
		f := setupBroker(t)
		f.exchanger.omitRefreshToken = true
		f.seedRefreshToken(t, testSessionID, "RT1")

		_, err := f.broker.GetToken(ctx, testSessionID)
		require.NoError(t, err)
		rt, err := f.repo.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "RT1", rt.Token)
	})

	t.Run("concurrent misses share one exchange", func(t *testing.T) {
		f := setupBroker(t)
		f.exchanger.release = make(chan struct{})
		f.seedRefreshToken(t, testSessionID, "RT1")

		const callers = 8
		var wg sync.WaitGroup
		results := make([]string, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = f.broker.GetToken(ctx, testSessionID)
			}(i)
		}

		require.Eventually(t, func() bool { return f.exchanger.refreshCalls.Load() == 1 }, time.Second, time.Millisecond)
		close(f.exchanger.release)
		wg.Wait()

		require.EqualValues(t, 1, f.exchanger.refreshCalls.Load())
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Equal(t, "refreshed-AT1", results[i])
		}
	})
}

func TestBroker_Establish(t *testing.T) {
	ctx := context.Background()

	t.Run("stores both tokens", func(t *testing.T) {
		f := setupBroker(t)
		require.False(t, f.broker.IsAuthorized(ctx, testSessionID))

		resp, err := f.broker.Establish(ctx, testSessionID, "abc")
		require.NoError(t, err)
		require.Equal(t, "AT1", resp.AccessToken)

		rt, err := f.repo.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "RT1", rt.Token)
		cached, err := f.cache.Get(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "AT1", cached)
		require.True(t, f.broker.IsAuthorized(ctx, testSessionID))
	})

	t.Run("failure leaves the session unauthorized", func(t *testing.T) {
		f := setupBroker(t)
		f.exchanger.err = fmt.Errorf("%w: denied", errors.ErrTokenExchange)

		_, err := f.broker.Establish(ctx, testSessionID, "abc")
		require.ErrorIs(t, err, errors.ErrTokenExchange)
		require.False(t, f.broker.IsAuthorized(ctx, testSessionID))
		_, err = f.cache.Get(ctx, testSessionID)
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("requires a session", func(t *testing.T) {
		f := setupBroker(t)
		_, err := f.broker.Establish(ctx, "", "abc")
		require.ErrorIs(t, err, errors.ErrSessionNotFound)
		require.Zero(t, f.exchanger.codeCalls.Load())
	})
}

func TestBroker_IsAuthorized(t *testing.T) {
	ctx := context.Background()
	f := setupBroker(t)

	require.False(t, f.broker.IsAuthorized(ctx, ""))
	require.False(t, f.broker.IsAuthorized(ctx, testSessionID))

	// An access token alone does not authorize a session.
	require.NoError(t, f.cache.Set(ctx, testSessionID, "AT1", time.Minute))
	require.False(t, f.broker.IsAuthorized(ctx, testSessionID))

	f.seedRefreshToken(t, testSessionID, "RT1")
	require.True(t, f.broker.IsAuthorized(ctx, testSessionID))
}
