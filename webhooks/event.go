// Package webhooks decodes and authenticates CRM webhook deliveries.
package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ObjectID accepts both JSON strings and numbers, since deliveries have used both
type ObjectID string

func (o *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = ObjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("objectId must be a string or number: %w", err)
	}
	*o = ObjectID(n.String())
	return nil
}

func (o ObjectID) String() string {
	return string(o)
}

// Event is a single change notification. Only ObjectID is needed to act on it.
type Event struct {
	ObjectID         ObjectID `json:"objectId" validate:"required"`
	PortalID         int64    `json:"portalId" validate:"gte=0"`
	EventID          int64    `json:"eventId"`
	SubscriptionID   int64    `json:"subscriptionId"`
	SubscriptionType string   `json:"subscriptionType"`
	AppID            int64    `json:"appId"`
	OccurredAt       int64    `json:"occurredAt"`
	AttemptNumber    int      `json:"attemptNumber" validate:"gte=0"`
	PropertyName     string   `json:"propertyName,omitempty"`
	PropertyValue    string   `json:"propertyValue,omitempty"`
	ChangeSource     string   `json:"changeSource,omitempty"`
}

// Portal returns the account id as a string, or "" when the event carried none
func (e Event) Portal() string {
	if e.PortalID == 0 {
		return ""
	}
	return strconv.FormatInt(e.PortalID, 10)
}

// Parse decodes a delivery body. It must be a non-empty JSON array whose
// first event names an object.
func Parse(body []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidPayload, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events", errors.ErrInvalidPayload)
	}
	if err := validate.Struct(events[0]); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidPayload, err)
	}
	return events, nil
}
