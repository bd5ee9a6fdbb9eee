package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/logging"
)

// ErrNoSlot is returned when a slot has no metadata.
var ErrNoSlot = errors.New("slot has no saved tabs")

// SlotSummary describes one persisted window slot. Err is set when its metadata could
// not be read or decoded; Metadata is nil then.
type SlotSummary struct {
	Slot     int
	Metadata *entity.Metadata
	Err      error
}

// RecordInfo is a persisted tab and whether a state blob exists for it.
type RecordInfo struct {
	entity.RestoreRecord
	HasState bool
}

// Kind names the record's visibility.
func (r RecordInfo) Kind() string {
	switch {
	case !r.IncognitoKnown():
		return "unknown"
	case r.IsIncognito():
		return "incognito"
	default:
		return "normal"
	}
}

// Slots summarizes every slot with metadata, ascending. A corrupt slot does not stop
// the listing.
func (a *App) Slots(ctx context.Context) ([]SlotSummary, error) {
	slots, err := a.Storage.Metadata.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	summaries := make([]SlotSummary, 0, len(slots))
	for _, slot := range slots {
		meta, err := a.readMetadata(ctx, slot)
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).Int("slot", slot).Msg("unreadable slot metadata")
		}
		summaries = append(summaries, SlotSummary{Slot: slot, Metadata: meta, Err: err})
	}
	return summaries, nil
}

// Records lists the tabs of slot in file order.
func (a *App) Records(ctx context.Context, slot int) ([]RecordInfo, error) {
	meta, err := a.readMetadata(ctx, slot)
	if err != nil {
		return nil, err
	}

	keys, err := a.Storage.Blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tab states: %w", err)
	}
	stored := make(map[entity.BlobKey]struct{}, len(keys))
	for _, k := range keys {
		stored[k] = struct{}{}
	}

	records := make([]RecordInfo, 0, len(meta.Records))
	for _, r := range meta.Records {
		_, hasState := stored[entity.BlobKey{ID: r.ID, Incognito: r.IsIncognito()}]
		records = append(records, RecordInfo{RestoreRecord: r, HasState: hasState})
	}
	return records, nil
}

func (a *App) readMetadata(ctx context.Context, slot int) (*entity.Metadata, error) {
	data, err := a.Storage.Metadata.Read(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("read slot %d: %w", slot, err)
	}
	if data == nil {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrNoSlot)
	}
	meta, err := entity.DecodeMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return meta, nil
}
