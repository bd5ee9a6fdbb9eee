package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/logging"
)

// MetadataFilePrefix is the name of a slot's metadata file without the slot number.
const MetadataFilePrefix = "tab_state"

type metadataRepo struct {
	dir string
}

// NewMetadataRepository stores metadata as <dir>/tab_state<slot>.
func NewMetadataRepository(dir string) repository.MetadataRepository {
	return &metadataRepo{dir: dir}
}

// MetadataPath returns the metadata file of slot inside dir.
func MetadataPath(dir string, slot int) string {
	return filepath.Join(dir, MetadataFilePrefix+strconv.Itoa(slot))
}

func (r *metadataRepo) Read(_ context.Context, slot int) ([]byte, error) {
	return readFileOptional(MetadataPath(r.dir, slot))
}

func (r *metadataRepo) Write(ctx context.Context, slot int, data []byte) error {
	path := MetadataPath(r.dir, slot)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write metadata of slot %d: %w", slot, err)
	}
	logging.FromContext(ctx).Debug().Int("slot", slot).Int("bytes", len(data)).Msg("metadata written")
	return nil
}

func (r *metadataRepo) Delete(_ context.Context, slot int) error {
	return removeOptional(MetadataPath(r.dir, slot))
}

func (r *metadataRepo) ListSlots(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list metadata in %s: %w", r.dir, err)
	}

	var slots []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		suffix, ok := strings.CutPrefix(e.Name(), MetadataFilePrefix)
		if !ok {
			continue
		}
		slot, err := strconv.Atoi(suffix)
		if err != nil || slot < 0 {
			continue
		}
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots, nil
}
