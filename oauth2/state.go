package oauth2

import (
	"fmt"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// StateSigner issues the OAuth state parameter as a short-lived HS256 JWT whose
// subject is the session that started the install, so the callback can check
// that the code comes back to the same browser session.
type StateSigner struct {
	key []byte
	ttl time.Duration
}

func NewStateSigner(key []byte, ttl time.Duration) *StateSigner {
	return &StateSigner{key: key, ttl: ttl}
}

// Issue returns a signed state bound to sessionID
func (s *StateSigner) Issue(sessionID string) (string, error) {
	now := NowTimeFunc()
	claims := jwt.RegisteredClaims{
		ID:        ksuid.New().String(),
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("[StateSigner Issue] sign state: %w", err)
	}
	return state, nil
}

// Verify checks signature, expiry and that the state belongs to sessionID
func (s *StateSigner) Verify(state, sessionID string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidState, err)
	}
	if claims.Subject != sessionID {
		return fmt.Errorf("%w: state was issued to another session", errors.ErrInvalidState)
	}
	return nil
}
