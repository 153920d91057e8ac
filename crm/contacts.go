package crm

import (
	"strconv"
	"time"
)

// Contact is a CRM contact record. Property values may be null on the wire.
type Contact struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Archived   bool               `json:"archived"`
}

// Property returns the named property, or "" when absent or null
func (c Contact) Property(name string) string {
	if v := c.Properties[name]; v != nil {
		return *v
	}
	return ""
}

// Paging carries the cursor for the next page, if any
type Paging struct {
	Next *struct {
		After string `json:"after"`
		Link  string `json:"link,omitempty"`
	} `json:"next,omitempty"`
}

// ContactPage is one page of the basic contacts listing
type ContactPage struct {
	Results []Contact `json:"results"`
	Paging  *Paging   `json:"paging,omitempty"`
}

// SearchResult is the answer to a contacts search
type SearchResult struct {
	Total   int       `json:"total"`
	Results []Contact `json:"results"`
	Paging  *Paging   `json:"paging,omitempty"`
}

// ListOptions mirrors the query parameters of the basic listing
type ListOptions struct {
	Limit      int
	After      string
	Properties []string
	Archived   bool
}

// FilterOperator is a search filter comparison
type FilterOperator string

const (
	OperatorEQ      FilterOperator = "EQ"
	OperatorGTE     FilterOperator = "GTE"
	OperatorLTE     FilterOperator = "LTE"
	OperatorBetween FilterOperator = "BETWEEN"
)

type Filter struct {
	PropertyName string         `json:"propertyName"`
	Operator     FilterOperator `json:"operator"`
	Value        string         `json:"value,omitempty"`
	HighValue    string         `json:"highValue,omitempty"`
}

type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest is the body of POST /crm/v3/objects/contacts/search
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	After        string        `json:"after,omitempty"`
}

// RecentlyModifiedSearch finds up to limit contacts whose lastmodifieddate falls
// in [until-window, until], projecting first name and email.
func RecentlyModifiedSearch(until time.Time, window time.Duration, limit int) SearchRequest {
	from := until.Add(-window)
	return SearchRequest{
		FilterGroups: []FilterGroup{{
			Filters: []Filter{{
				PropertyName: "lastmodifieddate",
				Operator:     OperatorBetween,
				Value:        strconv.FormatInt(from.UnixMilli(), 10),
				HighValue:    strconv.FormatInt(until.UnixMilli(), 10),
			}},
		}},
		Properties: []string{"firstname", "email"},
		Limit:      limit,
	}
}

// TokenInfo describes the account an access token belongs to
type TokenInfo struct {
	Token     string   `json:"token"`
	User      string   `json:"user"`
	HubDomain string   `json:"hub_domain"`
	HubID     int64    `json:"hub_id"`
	AppID     int64    `json:"app_id"`
	UserID    int64    `json:"user_id"`
	Scopes    []string `json:"scopes"`
	ExpiresIn int      `json:"expires_in"`
	TokenType string   `json:"token_type"`
}

// PortalID is the account id as a string, the key webhooks carry
func (t TokenInfo) PortalID() string {
	return strconv.FormatInt(t.HubID, 10)
}
