package oauth2

// TokenResponse represents the provider's response to a token request.
// Both grant types answer with the same shape.
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential for CRM API calls.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: cached for 600 seconds regardless of ExpiresIn
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential exchanged for new access tokens.
	// Providers may rotate it on every refresh, so the latest one must be kept.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is normally "bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the provider's lifetime hint for the access token, in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`
}
