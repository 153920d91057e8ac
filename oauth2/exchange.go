package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	xoauth2 "golang.org/x/oauth2"
)

const maxTokenResponseSize = 1 << 20

// ExchangeClient performs the authorization-code and refresh-token grants
// against the CRM provider's token endpoint. Failures are returned, never retried.
type ExchangeClient struct {
	config     *xoauth2.Config
	httpClient *http.Client
}

// NewExchangeClient builds a client from the app credentials. A nil httpClient
// gets a default client with the configured timeout.
func NewExchangeClient(cfg config.OAuthConfig, httpClient *http.Client) *ExchangeClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetHTTPTimeout()}
	}
	return &ExchangeClient{
		config: &xoauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetRedirectURI(),
			Scopes:       cfg.GetScopes(),
			Endpoint: xoauth2.Endpoint{
				AuthURL:   cfg.GetAuthorizeURL(),
				TokenURL:  cfg.GetTokenURL(),
				AuthStyle: xoauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the provider's install URL carrying client_id, redirect_uri, scope and state.
func (c *ExchangeClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// ExchangeAuthorizationCode trades the one-time code from the consent redirect for a token pair.
func (c *ExchangeClient) ExchangeAuthorizationCode(ctx context.Context, code string) (*TokenResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", errors.ErrTokenExchange)
	}

	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *xoauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			fillRetrieveError(retrieveErr)
		}
		return nil, fmt.Errorf("%w: [ExchangeClient %s] %w", errors.ErrTokenExchange, AuthorizationCodeGrant, err)
	}
	return fromToken(token), nil
}

// ExchangeRefreshToken trades a refresh token for a new token pair. The form is
// built here because the provider expects redirect_uri on this grant too.
func (c *ExchangeClient) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrTokenExchange, errors.ErrInvalidRefreshToken)
	}
	return c.exchange(ctx, RefreshTokenGrant, url.Values{"refresh_token": {refreshToken}})
}

func (c *ExchangeClient) exchange(ctx context.Context, grant GrantType, params url.Values) (*TokenResponse, error) {
	params.Set("grant_type", string(grant))
	params.Set("client_id", c.config.ClientID)
	params.Set("client_secret", c.config.ClientSecret)
	params.Set("redirect_uri", c.config.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: [ExchangeClient %s] build request: %w", errors.ErrTokenExchange, grant, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: [ExchangeClient %s] %w", errors.ErrTokenExchange, grant, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: [ExchangeClient %s] read body: %w", errors.ErrTokenExchange, grant, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retrieveErr := &xoauth2.RetrieveError{Response: resp, Body: body}
		fillRetrieveError(retrieveErr)
		return nil, fmt.Errorf("%w: [ExchangeClient %s] %w", errors.ErrTokenExchange, grant, retrieveErr)
	}

	var tokenResponse TokenResponse
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return nil, fmt.Errorf("%w: [ExchangeClient %s] malformed body: %w", errors.ErrTokenExchange, grant, err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, fmt.Errorf("%w: [ExchangeClient %s] response carries no access_token", errors.ErrTokenExchange, grant)
	}

	return &tokenResponse, nil
}

// fillRetrieveError reads both RFC 6749 errors ({"error": ...}) and the provider's
// own shape ({"status": ..., "message": ...}) from the body. Fields already set are kept.
func fillRetrieveError(retrieveErr *xoauth2.RetrieveError) {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorURI         string `json:"error_uri"`
		Status           string `json:"status"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(retrieveErr.Body, &payload); err != nil {
		return
	}
	if retrieveErr.ErrorCode == "" {
		retrieveErr.ErrorCode = payload.Error
	}
	if retrieveErr.ErrorCode == "" {
		retrieveErr.ErrorCode = payload.Status
	}
	if retrieveErr.ErrorDescription == "" {
		retrieveErr.ErrorDescription = payload.ErrorDescription
	}
	if retrieveErr.ErrorDescription == "" {
		retrieveErr.ErrorDescription = payload.Message
	}
	if retrieveErr.ErrorURI == "" {
		retrieveErr.ErrorURI = payload.ErrorURI
	}
}

// fromToken maps the library token onto the provider's response shape
func fromToken(token *xoauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	switch v := token.Extra("expires_in").(type) {
	case float64:
		resp.ExpiresIn = int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			resp.ExpiresIn = int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			resp.ExpiresIn = n
		}
	}
	return resp
}
