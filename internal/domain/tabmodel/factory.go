package tabmodel

import (
	"context"
	"fmt"

	"github.com/bnema/tabsession/internal/domain/entity"
)

// Factory builds tab handles. The navigation layer owns real tab construction; the
// selector only records what the factory returns.
type Factory interface {
	// CreateTab opens a tab for params. params.ForceID forces params.TabID.
	CreateTab(ctx context.Context, params entity.LoadURLParams, launch entity.LaunchType, parent *entity.Tab, incognito bool) (*entity.Tab, error)
	// CreateFrozenTab rebuilds a tab from persisted state without loading it.
	CreateFrozenTab(ctx context.Context, state *entity.TabState, id entity.TabID, url string) (*entity.Tab, error)
}

// TabLocator answers whether a tab id is live anywhere in the process.
type TabLocator interface {
	ContainsTab(id entity.TabID) bool
}

// DefaultFactory creates bare handles with ids from an allocator.
type DefaultFactory struct {
	IDs *entity.IDAllocator
}

// NewDefaultFactory returns a factory backed by ids.
func NewDefaultFactory(ids *entity.IDAllocator) *DefaultFactory {
	return &DefaultFactory{IDs: ids}
}

// CreateTab implements Factory.
func (f *DefaultFactory) CreateTab(
	_ context.Context,
	params entity.LoadURLParams,
	launch entity.LaunchType,
	parent *entity.Tab,
	incognito bool,
) (*entity.Tab, error) {
	var id entity.TabID
	if params.ForceID {
		if !params.TabID.Valid() {
			return nil, fmt.Errorf("forced tab id %d: %w", params.TabID, ErrInvalidTabID)
		}
		id = params.TabID
		f.IDs.EnsureAbove(id)
	} else {
		id = f.IDs.Next()
	}

	tab := entity.NewTab(id, params.URL, incognito)
	tab.LaunchType = launch
	if parent != nil {
		tab.ParentID = parent.ID
	}
	return tab, nil
}

// CreateFrozenTab implements Factory.
func (f *DefaultFactory) CreateFrozenTab(_ context.Context, state *entity.TabState, id entity.TabID, url string) (*entity.Tab, error) {
	f.IDs.EnsureAbove(id)
	return entity.NewFrozenTab(id, url, state), nil
}
