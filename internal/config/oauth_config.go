package config

import (
	"strings"
	"time"
)

// OAuthConfig describes the registered CRM app and the provider endpoints it talks to.
type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScopes() []string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenMaxAge() time.Duration
	GetStateTTL() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv("CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("CLIENT_SECRET", "")
}

func (OAuth) GetRedirectURI() string {
	return GetEnv("REDIRECT_URI", "http://localhost:3000/oauth-callback")
}

// GetScopes splits SCOPES on spaces or commas.
func (OAuth) GetScopes() []string {
	raw := GetEnv("SCOPES", "crm.objects.contacts.read")
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

func (OAuth) GetAuthorizeURL() string {
	return GetEnv("CRM_AUTHORIZE_URL", "https://app.hubspot.com/oauth/authorize")
}

func (OAuth) GetTokenURL() string {
	return GetEnv("CRM_TOKEN_URL", "https://api.hubapi.com/oauth/v1/token")
}

func (OAuth) GetAPIBaseURL() string {
	return strings.TrimSuffix(GetEnv("CRM_API_BASE_URL", "https://api.hubapi.com"), "/")
}

func (OAuth) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("HTTP_TIMEOUT", 15*time.Second)
}

func (OAuth) GetAccessTokenTTL() time.Duration {
	return 600 * time.Second
}

// GetRefreshTokenMaxAge of zero keeps refresh tokens for the life of the store.
func (OAuth) GetRefreshTokenMaxAge() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_MAX_AGE", 0)
}

func (OAuth) GetStateTTL() time.Duration {
	return 10 * time.Minute
}
