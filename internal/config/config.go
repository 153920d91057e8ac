package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Config interface {
	EnvConfig
	OAuthConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Security
	Store
}

func New() Config {
	return mainConfig{}
}

// required is the snapshot of settings the service cannot start without.
type required struct {
	Port         string   `validate:"required"`
	ClientID     string   `validate:"required"`
	ClientSecret string   `validate:"required"`
	RedirectURI  string   `validate:"required,url"`
	AuthorizeURL string   `validate:"required,url"`
	TokenURL     string   `validate:"required,url"`
	APIBaseURL   string   `validate:"required,url"`
	Scopes       []string `validate:"min=1,dive,required"`
	StoreBackend string   `validate:"oneof=memory valkey"`
}

// Validate checks that the configuration carries everything the service needs to talk to the CRM provider.
func Validate(c Config) error {
	snapshot := required{
		Port:         c.GetPort(),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURI:  c.GetRedirectURI(),
		AuthorizeURL: c.GetAuthorizeURL(),
		TokenURL:     c.GetTokenURL(),
		APIBaseURL:   c.GetAPIBaseURL(),
		Scopes:       c.GetScopes(),
		StoreBackend: c.GetStoreBackend(),
	}
	if err := validator.New().Struct(snapshot); err != nil {
		return fmt.Errorf("[config Validate] invalid configuration: %w", err)
	}
	return nil
}
