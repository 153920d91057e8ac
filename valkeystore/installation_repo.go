package valkeystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MariHpf/oauth-app-marius-test/installations"
	"github.com/MariHpf/oauth-app-marius-test/internal/errors"
	"github.com/valkey-io/valkey-go"
)

var _ installations.Repo = (*InstallationRepo)(nil)

// InstallationRepo keeps one JSON document per portal plus a set indexing them
type InstallationRepo struct {
	vk valkey.Client
}

func NewInstallationRepo(vk valkey.Client) *InstallationRepo {
	return &InstallationRepo{vk: vk}
}

func (r *InstallationRepo) Upsert(ctx context.Context, installation *installations.Installation) error {
	if installation == nil || installation.PortalID == "" || installation.SessionID == "" {
		return fmt.Errorf("%w: portal id and session id are required", errors.ErrInvalidRequest)
	}
	stored := *installation
	if stored.InstalledAt.IsZero() {
		stored.InstalledAt = installations.NowTimeFunc()
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding installation: %w", err)
	}

	cmds := valkey.Commands{
		r.vk.B().Set().Key(installationPrefix + stored.PortalID).Value(string(payload)).Build(),
		r.vk.B().Sadd().Key(installationIndex).Member(stored.PortalID).Build(),
	}
	for _, resp := range r.vk.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("storing installation in Valkey: %w", err)
		}
	}
	return nil
}

func (r *InstallationRepo) Delete(ctx context.Context, portalID string) error {
	cmds := valkey.Commands{
		r.vk.B().Del().Key(installationPrefix + portalID).Build(),
		r.vk.B().Srem().Key(installationIndex).Member(portalID).Build(),
	}
	for _, resp := range r.vk.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("deleting installation from Valkey: %w", err)
		}
	}
	return nil
}

func (r *InstallationRepo) Get(ctx context.Context, portalID string) (*installations.Installation, error) {
	payload, err := r.vk.Do(ctx, r.vk.B().Get().Key(installationPrefix+portalID).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading installation from Valkey: %w", err)
	}
	return decodeInstallation(payload)
}

func (r *InstallationRepo) List(ctx context.Context, offset, limit int) ([]*installations.Installation, error) {
	portalIDs, err := r.vk.Do(ctx, r.vk.B().Smembers().Key(installationIndex).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("listing installations in Valkey: %w", err)
	}
	if len(portalIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(portalIDs))
	for i, id := range portalIDs {
		keys[i] = installationPrefix + id
	}
	values, err := r.vk.Do(ctx, r.vk.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return nil, fmt.Errorf("reading installations from Valkey: %w", err)
	}

	all := make([]*installations.Installation, 0, len(values))
	for _, value := range values {
		payload, err := value.AsBytes()
		if valkey.IsValkeyNil(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading installation from Valkey: %w", err)
		}
		installation, err := decodeInstallation(payload)
		if err != nil {
			return nil, err
		}
		all = append(all, installation)
	}
	return installations.Page(all, offset, limit), nil
}

func decodeInstallation(payload []byte) (*installations.Installation, error) {
	var installation installations.Installation
	if err := json.Unmarshal(payload, &installation); err != nil {
		return nil, fmt.Errorf("decoding installation: %w", err)
	}
	return &installation, nil
}
