package sessions

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// Keys are the secrets derived from SESSION_SECRET
type Keys struct {
	HashKey  []byte // cookie HMAC
	BlockKey []byte // cookie AES-256
	StateKey []byte // oauth state JWT
}

// DeriveKeys expands one master secret into independent keys. An empty secret
// yields random keys, which invalidates every cookie on restart.
func DeriveKeys(secret string) (Keys, error) {
	master := []byte(secret)
	if len(master) == 0 {
		master = securecookie.GenerateRandomKey(32)
		if master == nil {
			return Keys{}, fmt.Errorf("[DeriveKeys] generate random secret failed")
		}
	}

	expand := func(info string, size int) ([]byte, error) {
		key := make([]byte, size)
		if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), key); err != nil {
			return nil, fmt.Errorf("[DeriveKeys] %s: %w", info, err)
		}
		return key, nil
	}

	var (
		keys Keys
		err  error
	)
	if keys.HashKey, err = expand("session-hash", 64); err != nil {
		return Keys{}, err
	}
	if keys.BlockKey, err = expand("session-block", 32); err != nil {
		return Keys{}, err
	}
	if keys.StateKey, err = expand("oauth-state", 32); err != nil {
		return Keys{}, err
	}
	return keys, nil
}
