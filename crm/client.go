// Package crm reads contacts from the CRM REST API on behalf of an authorized session.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	xoauth2 "golang.org/x/oauth2"
)

const (
	contactsPath    = "/crm/v3/objects/contacts"
	searchPath      = "/crm/v3/objects/contacts/search"
	tokenInfoPath   = "/oauth/v1/access-tokens/"
	maxResponseSize = 4 << 20
)

// APIError is a non-2xx answer from the CRM API
type APIError struct {
	StatusCode    int    `json:"-"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("crm api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("crm api: http %d %s: %s", e.StatusCode, e.Category, e.Message)
}

// Is lets callers match errors.ErrCRMRequest for any API error and errors.ErrNotFound for a 404
func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrCRMRequest:
		return true
	case errors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CRM client rooted at baseURL (e.g. "https://api.hubapi.com")
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListContacts fetches one page of contacts
func (c *Client) ListContacts(ctx context.Context, accessToken string, opts ListOptions) (*ContactPage, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.After != "" {
		q.Set("after", opts.After)
	}
	if len(opts.Properties) > 0 {
		q.Set("properties", strings.Join(opts.Properties, ","))
	}
	q.Set("archived", strconv.FormatBool(opts.Archived))

	var page ContactPage
	if err := c.do(ctx, accessToken, http.MethodGet, contactsPath, q, nil, &page); err != nil {
		return nil, fmt.Errorf("[crm ListContacts] %w", err)
	}
	return &page, nil
}

// SearchContacts runs a filtered contacts search
func (c *Client) SearchContacts(ctx context.Context, accessToken string, req SearchRequest) (*SearchResult, error) {
	var result SearchResult
	if err := c.do(ctx, accessToken, http.MethodPost, searchPath, nil, req, &result); err != nil {
		return nil, fmt.Errorf("[crm SearchContacts] %w", err)
	}
	return &result, nil
}

// GetContact fetches a single contact by its object id
func (c *Client) GetContact(ctx context.Context, accessToken, contactID string, properties ...string) (*Contact, error) {
	if contactID == "" {
		return nil, fmt.Errorf("[crm GetContact] %w: contact id is required", errors.ErrInvalidRequest)
	}
	q := url.Values{}
	if len(properties) > 0 {
		q.Set("properties", strings.Join(properties, ","))
	}

	var contact Contact
	if err := c.do(ctx, accessToken, http.MethodGet, contactsPath+"/"+url.PathEscape(contactID), q, nil, &contact); err != nil {
		return nil, fmt.Errorf("[crm GetContact] %w", err)
	}
	return &contact, nil
}

// GetAccessTokenInfo resolves the account (hub id) and user behind an access token.
// The token travels in the path, so no bearer header is sent.
func (c *Client) GetAccessTokenInfo(ctx context.Context, accessToken string) (*TokenInfo, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("[crm GetAccessTokenInfo] %w", errors.ErrUnauthorized)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenInfoPath+url.PathEscape(accessToken), nil)
	if err != nil {
		return nil, fmt.Errorf("[crm GetAccessTokenInfo] build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var info TokenInfo
	if err := c.send(c.httpClient, req, &info); err != nil {
		return nil, fmt.Errorf("[crm GetAccessTokenInfo] %w", err)
	}
	return &info, nil
}

// authorizedClient wraps the base client in an oauth2 transport that adds the bearer header
func (c *Client) authorizedClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
	client := xoauth2.NewClient(ctx, xoauth2.StaticTokenSource(&xoauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.httpClient.Timeout
	return client
}

func (c *Client) do(ctx context.Context, accessToken, method, path string, query url.Values, body, out any) error {
	if accessToken == "" {
		return errors.ErrUnauthorized
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(c.authorizedClient(ctx, accessToken), req, out)
}

func (c *Client) send(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCRMRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", errors.ErrCRMRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", errors.ErrCRMRequest, err)
	}
	return nil
}
