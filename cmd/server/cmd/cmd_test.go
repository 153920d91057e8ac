package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/MariHpf/oauth-app-marius-test/installations"
	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/token/access"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURLCommand(t *testing.T) {
	t.Setenv("CLIENT_ID", "test-client")
	t.Setenv("REDIRECT_URI", "")
	t.Setenv("SCOPES", "")
	t.Setenv("CRM_AUTHORIZE_URL", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"authorize-url"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	url := out.String()
	require.Contains(t, url, "https://app.hubspot.com/oauth/authorize?")
	require.Contains(t, url, "client_id=test-client")
	require.Contains(t, url, "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Foauth-callback")
	require.Contains(t, url, "scope=crm.objects.contacts.read")
	require.NotContains(t, url, "state=")
}

func TestNewStores_Memory(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := newStores(ctx, config.New())
	require.NoError(t, err)
	defer st.close()

	require.IsType(t, &access.InMemoryCache{}, st.cache)

	services, err := newServices(config.New(), st)
	require.NoError(t, err)
	require.NotNil(t, services.Broker)
	require.NotNil(t, services.States)
}

func TestLogInstallations(t *testing.T) {
	ctx := context.Background()
	repo := installations.NewInMemoryRepo()
	require.Equal(t, 0, logInstallations(ctx, repo))

	require.NoError(t, repo.Upsert(ctx, &installations.Installation{PortalID: "62515", SessionID: "s1"}))
	require.NoError(t, repo.Upsert(ctx, &installations.Installation{PortalID: "1001", SessionID: "s2"}))
	require.Equal(t, 2, logInstallations(ctx, repo))
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	t.Setenv("ENV", "PROD")

	t.Setenv("LOG_LEVEL", "warn")
	setupLogging(config.EnvVars{}, false)
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	t.Setenv("LOG_LEVEL", "nonsense")
	setupLogging(config.EnvVars{}, false)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	setupLogging(config.EnvVars{}, true)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
