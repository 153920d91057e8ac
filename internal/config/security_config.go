package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetSecureCookies() bool
	GetRequireState() bool
	GetVerifyWebhookSignature() bool
	GetWebhookMaxAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret returns an empty string when unset; callers then generate a per-process secret.
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Security) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "crm_session")
}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
}

func (Security) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", false)
}

func (Security) GetRequireState() bool {
	return GetEnvBool("OAUTH_REQUIRE_STATE", false)
}

func (Security) GetVerifyWebhookSignature() bool {
	return GetEnvBool("WEBHOOK_VERIFY_SIGNATURE", false)
}

func (Security) GetWebhookMaxAge() time.Duration {
	return 5 * time.Minute
}
