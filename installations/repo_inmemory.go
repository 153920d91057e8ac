package installations

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// NowTimeFunc stamps installations that arrive without InstalledAt
var NowTimeFunc = time.Now

type InMemoryRepo struct {
	mu            sync.RWMutex
	installations map[string]Installation // portalID -> installation
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		installations: make(map[string]Installation),
	}
}

// Upsert replaces any earlier installation for the same account; the latest consent wins
func (r *InMemoryRepo) Upsert(_ context.Context, installation *Installation) error {
	if err := validate(installation); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(*installation)
	if stored.InstalledAt.IsZero() {
		stored.InstalledAt = NowTimeFunc()
	}
	r.installations[stored.PortalID] = stored
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, portalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.installations, portalID)
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, portalID string) (*Installation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	installation, ok := r.installations[portalID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	installation = clone(installation)
	return &installation, nil
}

// List returns installations ordered by portal id
func (r *InMemoryRepo) List(_ context.Context, offset, limit int) ([]*Installation, error) {
	r.mu.RLock()
	all := make([]*Installation, 0, len(r.installations))
	for _, installation := range r.installations {
		installation = clone(installation)
		all = append(all, &installation)
	}
	r.mu.RUnlock()

	return Page(all, offset, limit), nil
}

// Page sorts installations by portal id and slices out [offset, offset+limit).
// A limit <= 0 means no limit.
func Page(all []*Installation, offset, limit int) []*Installation {
	sort.Slice(all, func(i, j int) bool {
		return all[i].PortalID < all[j].PortalID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func validate(installation *Installation) error {
	if installation == nil {
		return fmt.Errorf("%w: installation cannot be nil", errors.ErrInvalidRequest)
	}
	if installation.PortalID == "" {
		return fmt.Errorf("%w: portal id is required", errors.ErrInvalidRequest)
	}
	if installation.SessionID == "" {
		return fmt.Errorf("%w: session id is required", errors.ErrInvalidRequest)
	}
	return nil
}

// clone copies the scopes so callers never share the stored slice
func clone(installation Installation) Installation {
	installation.Scopes = append([]string(nil), installation.Scopes...)
	return installation
}
