package blobstore

import (
	"context"

	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
)

// Switcher routes blob operations to the cloud store while connected and to
// the local store in fallback mode, mirroring how the sync engine treats
// collection writes. Blobs written locally during fallback are not migrated
// on reset; like diverged records, they are reconciled by the operator.
type Switcher struct {
	cloud Store // nil when S3 is not configured
	local Store
	fb    *fallback.Controller
}

func NewSwitcher(cloud, local Store, fb *fallback.Controller) *Switcher {
	return &Switcher{cloud: cloud, local: local, fb: fb}
}

func (s *Switcher) active() Store {
	if s.cloud != nil && !s.fb.Active() {
		return s.cloud
	}
	return s.local
}

func (s *Switcher) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.active().Put(ctx, key, data, contentType)
}

func (s *Switcher) Get(ctx context.Context, key string) ([]byte, error) {
	return s.active().Get(ctx, key)
}

func (s *Switcher) Delete(ctx context.Context, key string) error {
	return s.active().Delete(ctx, key)
}
