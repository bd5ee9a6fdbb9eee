package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository"
)

const (
	// BlobDir is the directory under the state directory holding tab blobs.
	BlobDir = "tabs"

	normalBlobPrefix    = "tab"
	incognitoBlobPrefix = "incognito_tab"
)

type tabStateRepo struct {
	dir string
}

// NewTabStateRepository stores blobs as <dir>/tabs/tab<id> and
// <dir>/tabs/incognito_tab<id>.
func NewTabStateRepository(dir string) repository.TabStateRepository {
	return &tabStateRepo{dir: filepath.Join(dir, BlobDir)}
}

// BlobFileName returns the file name used for key.
func BlobFileName(key entity.BlobKey) string {
	if key.Incognito {
		return incognitoBlobPrefix + key.ID.String()
	}
	return normalBlobPrefix + key.ID.String()
}

// ParseBlobFileName reverses BlobFileName.
func ParseBlobFileName(name string) (entity.BlobKey, bool) {
	incognito := false
	rest, ok := strings.CutPrefix(name, incognitoBlobPrefix)
	if ok {
		incognito = true
	} else if rest, ok = strings.CutPrefix(name, normalBlobPrefix); !ok {
		return entity.BlobKey{}, false
	}

	id, err := strconv.Atoi(rest)
	if err != nil || id < 0 {
		return entity.BlobKey{}, false
	}
	return entity.BlobKey{ID: entity.TabID(id), Incognito: incognito}, true
}

func (r *tabStateRepo) path(key entity.BlobKey) string {
	return filepath.Join(r.dir, BlobFileName(key))
}

func (r *tabStateRepo) Load(_ context.Context, key entity.BlobKey) ([]byte, error) {
	return readFileOptional(r.path(key))
}

func (r *tabStateRepo) Save(_ context.Context, key entity.BlobKey, data []byte) error {
	if err := writeFileAtomic(r.path(key), data); err != nil {
		return fmt.Errorf("save tab state %d: %w", key.ID, err)
	}
	return nil
}

func (r *tabStateRepo) Delete(_ context.Context, key entity.BlobKey) error {
	return removeOptional(r.path(key))
}

func (r *tabStateRepo) List(_ context.Context) ([]entity.BlobKey, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list tab states in %s: %w", r.dir, err)
	}

	var keys []entity.BlobKey
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := ParseBlobFileName(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
