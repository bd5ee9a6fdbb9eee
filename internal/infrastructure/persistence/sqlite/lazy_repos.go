package sqlite

import (
	"context"
	"sync"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository"
)

// LazyTabStateRepository opens the database on its first call.
type LazyTabStateRepository struct {
	provider *LazyDB
	repo     repository.TabStateRepository
	once     sync.Once
	initErr  error
}

// NewLazyTabStateRepository creates a lazy-loading tab state repository.
func NewLazyTabStateRepository(provider *LazyDB) *LazyTabStateRepository {
	return &LazyTabStateRepository{provider: provider}
}

func (r *LazyTabStateRepository) init(ctx context.Context) error {
	r.once.Do(func() {
		db, err := r.provider.DB(ctx)
		if err != nil {
			r.initErr = err
			return
		}
		r.repo = NewTabStateRepository(db)
	})
	return r.initErr
}

func (r *LazyTabStateRepository) Load(ctx context.Context, key entity.BlobKey) ([]byte, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.Load(ctx, key)
}

func (r *LazyTabStateRepository) Save(ctx context.Context, key entity.BlobKey, data []byte) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Save(ctx, key, data)
}

func (r *LazyTabStateRepository) Delete(ctx context.Context, key entity.BlobKey) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Delete(ctx, key)
}

func (r *LazyTabStateRepository) List(ctx context.Context) ([]entity.BlobKey, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.List(ctx)
}

// LazyPreferenceRepository opens the database on its first call.
type LazyPreferenceRepository struct {
	provider *LazyDB
	repo     repository.PreferenceRepository
	once     sync.Once
	initErr  error
}

// NewLazyPreferenceRepository creates a lazy-loading preference repository.
func NewLazyPreferenceRepository(provider *LazyDB) *LazyPreferenceRepository {
	return &LazyPreferenceRepository{provider: provider}
}

func (r *LazyPreferenceRepository) init(ctx context.Context) error {
	r.once.Do(func() {
		db, err := r.provider.DB(ctx)
		if err != nil {
			r.initErr = err
			return
		}
		r.repo = NewPreferenceRepository(db)
	})
	return r.initErr
}

func (r *LazyPreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := r.init(ctx); err != nil {
		return "", false, err
	}
	return r.repo.Get(ctx, key)
}

func (r *LazyPreferenceRepository) Set(ctx context.Context, key, value string) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Set(ctx, key, value)
}

func (r *LazyPreferenceRepository) Delete(ctx context.Context, key string) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Delete(ctx, key)
}

var (
	_ repository.TabStateRepository   = (*LazyTabStateRepository)(nil)
	_ repository.PreferenceRepository = (*LazyPreferenceRepository)(nil)
)
