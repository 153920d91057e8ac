package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
)

const (
	HeaderSignatureV3      = "X-HubSpot-Signature-v3"
	HeaderSignature        = "X-HubSpot-Signature"
	HeaderSignatureVersion = "X-HubSpot-Signature-Version"
	HeaderTimestamp        = "X-HubSpot-Request-Timestamp"
)

var NowTimeFunc = time.Now

// Verifier checks that a delivery was signed with the app's client secret
type Verifier struct {
	secret string
	maxAge time.Duration
}

func NewVerifier(clientSecret string, maxAge time.Duration) *Verifier {
	return &Verifier{secret: clientSecret, maxAge: maxAge}
}

// Verify prefers the v3 signature and falls back to v2/v1 when only the legacy header is present
func (v *Verifier) Verify(r *http.Request, body []byte) error {
	if v.secret == "" {
		return fmt.Errorf("%w: no client secret configured", errors.ErrInvalidSignature)
	}
	if sig := r.Header.Get(HeaderSignatureV3); sig != "" {
		return v.verifyV3(r, body, sig)
	}
	if sig := r.Header.Get(HeaderSignature); sig != "" {
		return v.verifyLegacy(r, body, sig)
	}
	return fmt.Errorf("%w: missing signature header", errors.ErrInvalidSignature)
}

func (v *Verifier) verifyV3(r *http.Request, body []byte, signature string) error {
	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errors.ErrInvalidSignature)
	}
	if v.maxAge > 0 {
		skew := NowTimeFunc().Sub(time.UnixMilli(ts))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.maxAge {
			return fmt.Errorf("%w: timestamp outside the accepted window", errors.ErrInvalidSignature)
		}
	}

	expected := SignV3(v.secret, r.Method, RequestURL(r), body, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.ErrInvalidSignature
	}
	return nil
}

func (v *Verifier) verifyLegacy(r *http.Request, body []byte, signature string) error {
	var expected string
	switch r.Header.Get(HeaderSignatureVersion) {
	case "v2":
		expected = SignV2(v.secret, r.Method, RequestURL(r), body)
	default:
		expected = sha256Hex(v.secret + string(body))
	}
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.ErrInvalidSignature
	}
	return nil
}

// SignV3 is base64(HMAC-SHA256(secret, method + uri + body + timestamp))
func SignV3(secret, method, uri string, body []byte, timestampMillis int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(uri))
	mac.Write(body)
	mac.Write([]byte(strconv.FormatInt(timestampMillis, 10)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignV2 is hex(SHA-256(secret + method + uri + body))
func SignV2(secret, method, uri string, body []byte) string {
	return sha256Hex(secret + method + uri + string(body))
}

// SignV1 is hex(SHA-256(secret + body))
func SignV1(secret string, body []byte) string {
	return sha256Hex(secret + string(body))
}

// RequestURL rebuilds the absolute URL the sender called, honouring X-Forwarded-Proto
func RequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
