package repository

import (
	"context"

	"github.com/bnema/tabsession/internal/domain/entity"
)

// MetadataRepository stores the encoded metadata of each window slot.
type MetadataRepository interface {
	// Read returns the raw metadata of slot, or nil, nil when none was written.
	Read(ctx context.Context, slot int) ([]byte, error)

	// Write replaces the metadata of slot atomically.
	Write(ctx context.Context, slot int, data []byte) error

	// Delete removes the metadata of slot. Missing metadata is not an error.
	Delete(ctx context.Context, slot int) error

	// ListSlots returns the slots that have metadata, ascending.
	ListSlots(ctx context.Context) ([]int, error)
}

// TabStateRepository stores encoded tab state blobs.
type TabStateRepository interface {
	// Load returns the blob for key, or nil, nil when it does not exist.
	Load(ctx context.Context, key entity.BlobKey) ([]byte, error)

	Save(ctx context.Context, key entity.BlobKey, data []byte) error

	// Delete removes the blob for key. Missing blobs are not an error.
	Delete(ctx context.Context, key entity.BlobKey) error

	// List returns every stored blob key.
	// Used for orphan cleanup.
	List(ctx context.Context) ([]entity.BlobKey, error)
}

// PreferenceRepository stores small scalar settings.
type PreferenceRepository interface {
	// Get returns the value of key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
