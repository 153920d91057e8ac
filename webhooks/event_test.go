package webhooks_test

import (
	"testing"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/webhooks"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("string object id", func(t *testing.T) {
		events, err := webhooks.Parse([]byte(`[{"objectId":"12345"}]`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, webhooks.ObjectID("12345"), events[0].ObjectID)
		require.Equal(t, "", events[0].Portal())
	})

	t.Run("numeric object id and full event", func(t *testing.T) {
		body := `[{"eventId":100,"subscriptionId":7,"portalId":62515,"appId":1,"occurredAt":1772445600000,
			"subscriptionType":"contact.propertyChange","attemptNumber":0,"objectId":12345,
			"propertyName":"email","propertyValue":"a@example.com","changeSource":"CRM"},
			{"objectId":"999"}]`
		events, err := webhooks.Parse([]byte(body))
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, "12345", events[0].ObjectID.String())
		require.Equal(t, "62515", events[0].Portal())
		require.Equal(t, "contact.propertyChange", events[0].SubscriptionType)
		require.Equal(t, "email", events[0].PropertyName)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `objectId=1`},
		{name: "object instead of array", body: `{"objectId":"1"}`},
		{name: "empty array", body: `[]`},
		{name: "missing object id", body: `[{"portalId":1}]`},
		{name: "null object id", body: `[{"objectId":null}]`},
		{name: "object id of wrong type", body: `[{"objectId":true}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := webhooks.Parse([]byte(tt.body))
			require.ErrorIs(t, err, errors.ErrInvalidPayload)
		})
	}
}
