package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/infrastructure/persistence/filestore"
	"github.com/bnema/tabsession/internal/logging"
)

// ErrRunning is returned when another process holds the state directory.
var ErrRunning = errors.New("tabsession is running on this state directory")

// PurgeResult reports what Purge removed.
type PurgeResult struct {
	Slots []int
	Blobs int
}

// Purge forgets the given slots, or every slot when none is given, then deletes the
// tab states no remaining slot refers to. It refuses to run while the state
// directory is in use.
func (a *App) Purge(ctx context.Context, slots ...int) (*PurgeResult, error) {
	log := logging.FromContext(ctx)

	lock, err := filestore.Lock(a.Config.StateDir)
	if errors.Is(err, filestore.ErrLocked) {
		return nil, ErrRunning
	}
	if err != nil {
		return nil, fmt.Errorf("lock state directory: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("failed to release state directory lock")
		}
	}()

	existing, err := a.Storage.Metadata.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if len(slots) == 0 {
		slots = existing
	}

	result := &PurgeResult{}
	for _, slot := range slots {
		if !slices.Contains(existing, slot) {
			return result, fmt.Errorf("slot %d: %w", slot, ErrNoSlot)
		}
		if err := a.Storage.Metadata.Delete(ctx, slot); err != nil {
			return result, fmt.Errorf("delete slot %d: %w", slot, err)
		}
		if err := a.Storage.Prefs.Delete(ctx, tabstore.LastActiveTabKey(slot)); err != nil {
			return result, fmt.Errorf("delete slot %d preferences: %w", slot, err)
		}
		result.Slots = append(result.Slots, slot)
		log.Debug().Int("slot", slot).Msg("slot purged")
	}

	n, err := a.deleteUnreferencedStates(ctx)
	result.Blobs = n
	return result, err
}

// deleteUnreferencedStates removes blobs that no remaining slot lists. Records of
// unknown visibility keep both of their possible blobs.
func (a *App) deleteUnreferencedStates(ctx context.Context) (int, error) {
	remaining, err := a.Storage.Metadata.ListSlots(ctx)
	if err != nil {
		return 0, fmt.Errorf("list slots: %w", err)
	}

	referenced := make(map[entity.BlobKey]struct{})
	for _, slot := range remaining {
		meta, err := a.readMetadata(ctx, slot)
		if err != nil {
			// Without its records we cannot tell which blobs the slot needs.
			return 0, fmt.Errorf("keeping tab states: %w", err)
		}
		for _, r := range meta.Records {
			if r.IncognitoKnown() {
				referenced[entity.BlobKey{ID: r.ID, Incognito: r.IsIncognito()}] = struct{}{}
				continue
			}
			referenced[entity.BlobKey{ID: r.ID}] = struct{}{}
			referenced[entity.BlobKey{ID: r.ID, Incognito: true}] = struct{}{}
		}
	}

	keys, err := a.Storage.Blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tab states: %w", err)
	}
	deleted := 0
	for _, k := range keys {
		if _, ok := referenced[k]; ok {
			continue
		}
		if err := a.Storage.Blobs.Delete(ctx, k); err != nil {
			return deleted, fmt.Errorf("delete tab state %d: %w", k.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
