// Package installations records which CRM account authorized which browser session.
//
// Webhook events only carry the account (portal) id, so this registry is how a
// notification finds the session whose tokens may read the changed object.
package installations

import "time"

// Installation links a CRM account to the session that completed the consent flow
type Installation struct {
	PortalID    string    `json:"portal_id"`
	SessionID   string    `json:"session_id"`
	HubDomain   string    `json:"hub_domain,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	Scopes      []string  `json:"scopes,omitempty"`
	InstalledAt time.Time `json:"installed_at"`
}
