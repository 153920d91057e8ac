package access

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
)

var _ Cache = (*InMemoryCache)(nil)

type entry struct {
	token     string
	expiresAt time.Time
}

// InMemoryCache is a thread-safe in-memory implementation of Cache
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewInMemoryCache creates an empty access token cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached token, or errors.ErrNotFound when absent or expired
func (c *InMemoryCache) Get(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID is required")
	}

	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return "", errors.ErrNotFound
	}

	if !NowTimeFunc().Before(e.expiresAt) {
		c.mu.Lock()
		// Only drop the entry we looked at; a concurrent Set may have replaced it.
		if current, ok := c.entries[sessionID]; ok && current == e {
			delete(c.entries, sessionID)
		}
		c.mu.Unlock()
		return "", errors.ErrNotFound
	}

	return e.token, nil
}

// Set stores the token until now+ttl
func (c *InMemoryCache) Set(_ context.Context, sessionID, accessToken string, ttl time.Duration) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = entry{
		token:     accessToken,
		expiresAt: NowTimeFunc().Add(ttl),
	}
	return nil
}

// Delete removes a cached token
func (c *InMemoryCache) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sessionID)
	return nil
}

// Purge drops every expired entry and reports how many were removed
func (c *InMemoryCache) Purge() int {
	now := NowTimeFunc()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for sessionID, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, sessionID)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RunJanitor purges expired entries every interval until ctx is done
func (c *InMemoryCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
