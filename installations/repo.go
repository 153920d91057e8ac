package installations

import "context"

type Repo interface {
	Upsert(ctx context.Context, installation *Installation) error
	Delete(ctx context.Context, portalID string) error
	Get(ctx context.Context, portalID string) (*Installation, error)
	List(ctx context.Context, offset, limit int) ([]*Installation, error)
}
