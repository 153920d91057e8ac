package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: the callback after the user consented on the provider's install page
	// Token request includes: code, client_id, client_secret, redirect_uri
	// Returns: access_token, refresh_token, expires_in
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new token pair.
	// Used in: every access token cache miss
	// Token request includes: refresh_token, client_id, client_secret, redirect_uri
	// Returns: new access_token and a (possibly rotated) refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)
