package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps refresh tokens for the life of the process
type InMemoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]StoredRefreshToken // sessionID -> token
}

// NewInMemoryRepo creates an empty refresh token repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens: make(map[string]StoredRefreshToken),
	}
}

func (r *InMemoryRepo) Upsert(_ context.Context, refreshToken *StoredRefreshToken) error {
	if refreshToken == nil {
		return fmt.Errorf("refreshToken cannot be nil")
	}
	if refreshToken.SessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if refreshToken.Token == "" {
		return errors.ErrInvalidRefreshToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	r.tokens[refreshToken.SessionID] = *refreshToken
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (*StoredRefreshToken, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[sessionID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &rt, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, sessionID)
	return nil
}
