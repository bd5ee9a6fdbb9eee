package tabstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/logging"
	"github.com/bnema/tabsession/internal/metrics"
)

// LoadState reads the window's metadata, plus the metadata of the configured merge
// slots, and announces what will be restored. Together with the blob listing that
// keeps new tab ids clear of state files on disk, it is the only synchronous disk read
// of the store. Missing metadata yields an empty window; unreadable metadata also
// yields an empty window and leaves the store Failed.
func (s *Store) LoadState(ctx context.Context, ignoreIncognito bool) (int, error) {
	if s.destroyed {
		return 0, ErrDestroyed
	}
	if s.state != StateUninitialized {
		return 0, fmt.Errorf("load state in %s: %w", s.state, ErrInvalidState)
	}

	log := logging.FromContext(s.ctx)
	s.state = StateLoading
	s.ignoreIncognito = ignoreIncognito

	meta, err := s.readMetadata(ctx, s.cfg.Slot)
	failed := false
	switch {
	case err != nil:
		log.Error().Err(err).Msg("tab metadata unreadable, starting with an empty window")
		meta = entity.EmptyMetadata()
		failed = true
	case meta == nil:
		log.Info().Msg("no tab metadata, starting with an empty window")
		meta = entity.EmptyMetadata()
	}
	s.meta = meta
	s.reserveBlobIDs(ctx)

	records := s.acceptRecords(meta.Records, false)
	for _, slot := range s.cfg.MergeSlots {
		if slot == s.cfg.Slot {
			continue
		}
		other, err := s.readMetadata(ctx, slot)
		if err != nil {
			log.Warn().Err(err).Int("merge_slot", slot).Msg("skipping unreadable metadata of merge slot")
			continue
		}
		if other == nil {
			continue
		}
		merged := s.acceptRecords(other.Records, true)
		s.mergeSlots = append(s.mergeSlots, slot)
		s.mergedCount += len(merged)
		records = append(records, merged...)
	}
	for i := range records {
		records[i].Index = i
	}
	s.queue = records
	s.tabCountAtStartup = len(records)
	s.activeID = activeRecordID(meta)

	if failed {
		s.state = StateFailed
	} else {
		s.state = StateRestoring
	}

	log.Info().
		Int("tab_count", len(records)).
		Int("merged", s.mergedCount).
		Bool("ignore_incognito", ignoreIncognito).
		Str("state", s.state.String()).
		Msg("tab metadata loaded")

	s.emit(Initialized{TabCountAtStartup: len(records)})
	for _, r := range records {
		s.emit(DetailsRead{Record: r})
	}
	return len(records), nil
}

// MergeState restores the records of other slots into this window, skipping ids that
// are already known here or live elsewhere. The merged metadata files are deleted once
// their tabs are restored. Reads happen off the control loop, so ctx only bounds the
// call itself.
func (s *Store) MergeState(ctx context.Context, fromSlots ...int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.state != StateReady {
		return fmt.Errorf("merge state in %s: %w", s.state, ErrInvalidState)
	}

	slots := make([]int, 0, len(fromSlots))
	for _, slot := range fromSlots {
		if slot != s.cfg.Slot {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return nil
	}

	s.state = StateRestoring
	log := logging.FromContext(s.ctx)

	s.deps.Pool.Go(s.ctx, func(poolCtx context.Context) {
		type read struct {
			slot int
			meta *entity.Metadata
		}
		var reads []read
		for _, slot := range slots {
			meta, err := s.readMetadata(poolCtx, slot)
			if err != nil {
				log.Warn().Err(err).Int("merge_slot", slot).Msg("skipping unreadable metadata of merge slot")
				continue
			}
			if meta != nil {
				reads = append(reads, read{slot: slot, meta: meta})
			}
		}

		s.post(func() {
			next := s.nextRecordIndex()
			for _, r := range reads {
				merged := s.acceptRecords(r.meta.Records, true)
				for i := range merged {
					merged[i].Index = next
					next++
				}
				s.queue = append(s.queue, merged...)
				s.mergeSlots = append(s.mergeSlots, r.slot)
				s.mergedCount += len(merged)
			}
			log.Info().Ints("slots", slots).Int("merged", s.mergedCount).Msg("merging tab state")

			s.restoreCtx, s.restoreCancel = context.WithCancel(s.ctx)
			s.loadNext()
		})
	})
	return nil
}

// acceptRecords drops records whose id was already seen or is live in another window,
// and raises the id allocator past every persisted id.
func (s *Store) acceptRecords(records []entity.RestoreRecord, fromMerge bool) []entity.RestoreRecord {
	out := make([]entity.RestoreRecord, 0, len(records))
	for _, r := range records {
		s.deps.IDs.EnsureAbove(r.ID)
		if s.seen[r.ID] || s.selector.ModelOf(r.ID) != nil {
			continue
		}
		if fromMerge && s.deps.Locator != nil && s.deps.Locator.ContainsTab(r.ID) {
			continue
		}
		if s.ignoreIncognito && r.IsIncognito() {
			continue
		}
		s.seen[r.ID] = true
		r.FromMerge = fromMerge
		if fromMerge {
			r.IsNormalActiveIndex = false
			r.IsIncognitoActiveIndex = false
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) nextRecordIndex() int {
	next := 0
	for _, entries := range s.restored {
		for _, e := range entries {
			next = max(next, e.index+1)
		}
	}
	for _, r := range s.queue {
		next = max(next, r.Index+1)
	}
	return next
}

func (s *Store) readMetadata(ctx context.Context, slot int) (*entity.Metadata, error) {
	data, err := s.deps.Metadata.Read(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("read metadata of slot %d: %w", slot, err)
	}
	if data == nil {
		return nil, nil
	}
	meta, err := entity.DecodeMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return meta, nil
}

func activeRecordID(meta *entity.Metadata) entity.TabID {
	for _, r := range meta.Records {
		if r.IsNormalActiveIndex {
			return r.ID
		}
	}
	return meta.SelectedNormalTabID
}

// startPrefetch begins loading the last active tab before LoadState is called.
func (s *Store) startPrefetch() {
	if s.deps.Prefs == nil {
		return
	}
	log := logging.FromContext(s.ctx)

	s.deps.Pool.Go(s.ctx, func(ctx context.Context) {
		value, ok, err := s.deps.Prefs.Get(ctx, LastActiveTabKey(s.cfg.Slot))
		if err != nil {
			log.Warn().Err(err).Msg("failed to read last active tab")
			return
		}
		if !ok {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || !entity.TabID(n).Valid() {
			return
		}
		id := entity.TabID(n)
		state, err := s.loadTabState(ctx, id, nil)
		if err != nil {
			log.Debug().Err(err).Int("tab_id", n).Msg("prefetch of active tab failed")
			return
		}
		if state != nil {
			s.states.Set(id, state)
			log.Debug().Int("tab_id", n).Msg("active tab prefetched")
		}
	})
}

// loadTabState loads and decodes the blob of id. incognito nil means unknown, in which
// case both variants are tried. Concurrent loads of the same tab share one read.
func (s *Store) loadTabState(ctx context.Context, id entity.TabID, incognito *bool) (*entity.TabState, error) {
	keys := []entity.BlobKey{{ID: id}, {ID: id, Incognito: true}}
	if incognito != nil {
		keys = []entity.BlobKey{{ID: id, Incognito: *incognito}}
	}

	var errs []error
	for _, key := range keys {
		v, err, _ := s.loads.Do(loadKey(key), func() (any, error) {
			start := s.deps.Clock.Now()
			data, err := s.deps.Blobs.Load(ctx, key)
			metrics.IODuration.WithLabelValues(metrics.OperationLoad).Observe(s.deps.Clock.Since(start).Seconds())
			if err != nil || data == nil {
				return nil, err
			}
			return s.deps.Codec.Decode(data)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if state, _ := v.(*entity.TabState); state != nil {
			return state, nil
		}
	}
	return nil, errors.Join(errs...)
}

func loadKey(key entity.BlobKey) string {
	if key.Incognito {
		return "i" + key.ID.String()
	}
	return "n" + key.ID.String()
}

// reserveBlobIDs raises the id allocator past every blob on disk, so a new tab never
// takes the id of a state file that orphan cleanup has yet to remove.
func (s *Store) reserveBlobIDs(ctx context.Context) {
	keys, err := s.deps.Blobs.List(ctx)
	if err != nil {
		logging.FromContext(s.ctx).Warn().Err(err).Msg("failed to list tab states")
		return
	}
	for _, key := range keys {
		s.deps.IDs.EnsureAbove(key.ID)
	}
}
