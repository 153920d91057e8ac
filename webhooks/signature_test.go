package webhooks_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/MariHpf/oauth-app-marius-test/webhooks"
	"github.com/stretchr/testify/require"
)

const testSecret = "client-secret"

func newDelivery(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
}

func TestVerifier_V3(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	webhooks.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { webhooks.NowTimeFunc = time.Now })

	body := []byte(`[{"objectId":"12345"}]`)
	verifier := webhooks.NewVerifier(testSecret, 5*time.Minute)

	sign := func(r *http.Request, ts time.Time) {
		millis := ts.UnixMilli()
		r.Header.Set(webhooks.HeaderTimestamp, strconv.FormatInt(millis, 10))
		r.Header.Set(webhooks.HeaderSignatureV3, webhooks.SignV3(testSecret, r.Method, "http://example.com/submit", body, millis))
	}

	t.Run("valid", func(t *testing.T) {
		r := newDelivery(string(body))
		sign(r, now.Add(-time.Minute))
		require.NoError(t, verifier.Verify(r, body))
	})

	t.Run("forwarded https", func(t *testing.T) {
		r := newDelivery(string(body))
		r.Header.Set("X-Forwarded-Proto", "https")
		millis := now.UnixMilli()
		r.Header.Set(webhooks.HeaderTimestamp, strconv.FormatInt(millis, 10))
		r.Header.Set(webhooks.HeaderSignatureV3, webhooks.SignV3(testSecret, http.MethodPost, "https://example.com/submit", body, millis))
		require.NoError(t, verifier.Verify(r, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		r := newDelivery(string(body))
		sign(r, now)
		require.ErrorIs(t, verifier.Verify(r, []byte(`[{"objectId":"1"}]`)), errors.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		r := newDelivery(string(body))
		sign(r, now.Add(-6*time.Minute))
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)
	})

	t.Run("timestamp from the future", func(t *testing.T) {
		r := newDelivery(string(body))
		sign(r, now.Add(6*time.Minute))
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)

		r = newDelivery(string(body))
		sign(r, now.Add(time.Minute))
		require.NoError(t, verifier.Verify(r, body))
	})

	t.Run("missing timestamp", func(t *testing.T) {
		r := newDelivery(string(body))
		r.Header.Set(webhooks.HeaderSignatureV3, "abc")
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		r := newDelivery(string(body))
		sign(r, now)
		require.ErrorIs(t, webhooks.NewVerifier("other", 5*time.Minute).Verify(r, body), errors.ErrInvalidSignature)
	})
}

func TestVerifier_Legacy(t *testing.T) {
	body := []byte(`[{"objectId":"12345"}]`)
	verifier := webhooks.NewVerifier(testSecret, 5*time.Minute)

	t.Run("v1", func(t *testing.T) {
		r := newDelivery(string(body))
		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV1(testSecret, body))
		require.NoError(t, verifier.Verify(r, body))

		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV1("other", body))
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)
	})

	t.Run("v2", func(t *testing.T) {
		r := newDelivery(string(body))
		r.Header.Set(webhooks.HeaderSignatureVersion, "v2")
		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV2(testSecret, http.MethodPost, "http://example.com/submit", body))
		require.NoError(t, verifier.Verify(r, body))

		// A v1 signature is not accepted when v2 is announced.
		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV1(testSecret, body))
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)

		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV2(testSecret, http.MethodPost, "http://example.com/other", body))
		require.ErrorIs(t, verifier.Verify(r, body), errors.ErrInvalidSignature)
	})

	t.Run("missing headers", func(t *testing.T) {
		require.ErrorIs(t, verifier.Verify(newDelivery(string(body)), body), errors.ErrInvalidSignature)
	})

	t.Run("no secret configured", func(t *testing.T) {
		r := newDelivery(string(body))
		r.Header.Set(webhooks.HeaderSignature, webhooks.SignV1("", body))
		require.ErrorIs(t, webhooks.NewVerifier("", 0).Verify(r, body), errors.ErrInvalidSignature)
	})
}
