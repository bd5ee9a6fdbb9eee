package tabstore

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/logging"
	"github.com/bnema/tabsession/internal/metrics"
)

// SaveState snapshots both collections, plus records still waiting to be restored,
// and schedules the metadata write, the lastActiveTabId preference and every dirty
// tab blob. It returns once the work is scheduled; use Flush to also wait for it.
func (s *Store) SaveState(ctx context.Context) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.state == StateUninitialized || s.state == StateLoading {
		return fmt.Errorf("save state in %s: %w", s.state, ErrInvalidState)
	}

	s.coalescer.Cancel(metadataSaveKey)
	if err := s.saveMetadata(); err != nil {
		return err
	}
	for _, incognito := range []bool{true, false} {
		for _, tab := range s.selector.Model(incognito).Tabs() {
			if tab.IsStateDirty() {
				s.writeBlob(tab)
			}
		}
	}
	return nil
}

// Flush saves the current state and waits until it is on disk.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.SaveState(ctx); err != nil {
		return err
	}
	return s.WaitForWrites(ctx)
}

// ClearState forgets everything persisted for this window: queued restores, the slot's
// metadata, its lastActiveTabId preference and the blobs of every tab it knows.
func (s *Store) ClearState(ctx context.Context) error {
	if s.destroyed {
		return ErrDestroyed
	}

	queued := make([]entity.BlobKey, 0, len(s.queue))
	for _, r := range s.queue {
		queued = append(queued, entity.BlobKey{ID: r.ID, Incognito: r.IsIncognito()})
	}
	var live []*entity.Tab
	for _, incognito := range []bool{true, false} {
		live = append(live, s.selector.Model(incognito).Tabs()...)
	}

	s.cancelRestore()
	s.queue = nil
	s.states.Clear()
	s.coalescer.Cancel(metadataSaveKey)

	slot := s.cfg.Slot
	s.seq.Post(func() {
		if err := s.deps.Metadata.Delete(s.ioCtx, slot); err != nil {
			logging.FromContext(s.ctx).Error().Err(err).Msg("failed to delete tab metadata")
		}
		s.lastWritten = nil
		if s.deps.Prefs != nil {
			if err := s.deps.Prefs.Delete(s.ioCtx, LastActiveTabKey(slot)); err != nil {
				logging.FromContext(s.ctx).Warn().Err(err).Msg("failed to delete last active tab")
			}
		}
	})
	for _, key := range queued {
		s.deleteBlob(key, true)
	}
	// Open tabs keep living; the next save writes them again.
	for _, tab := range live {
		s.deleteBlob(entity.BlobKey{ID: tab.ID, Incognito: tab.Incognito}, false)
		if state := tab.State(); state != nil {
			tab.MarkStateDirty(state)
		}
	}

	logging.FromContext(s.ctx).Info().
		Int("queued", len(queued)).
		Int("live", len(live)).
		Msg("tab state cleared")
	return waitIdle(ctx, s.seq.Wait)
}

// snapshot builds the metadata describing the window right now.
func (s *Store) snapshot() *entity.Metadata {
	meta := entity.EmptyMetadata()
	meta.SavedAt = s.deps.Clock.Now()
	added := make(map[entity.TabID]bool)

	for _, incognito := range []bool{true, false} {
		model := s.selector.Model(incognito)
		current := model.Current()
		for _, tab := range model.Tabs() {
			added[tab.ID] = true
			meta.Records = append(meta.Records, entity.RestoreRecord{
				Index:                  len(meta.Records),
				ID:                     tab.ID,
				URL:                    tab.URL,
				IsNormalActiveIndex:    !incognito && tab == current,
				IsIncognitoActiveIndex: incognito && tab == current,
				Incognito:              entity.BoolPtr(incognito),
			})
		}
		if current != nil {
			if incognito {
				meta.SelectedIncognitoTabID = current.ID
			} else {
				meta.SelectedNormalTabID = current.ID
			}
		}
	}

	pending := s.queue
	if s.current != nil && !s.discardCurrent {
		pending = append([]entity.RestoreRecord{*s.current}, s.queue...)
	}
	for _, r := range pending {
		if added[r.ID] {
			continue
		}
		added[r.ID] = true
		r.Index = len(meta.Records)
		meta.Records = append(meta.Records, r)

		// Keep the active tab of a window that is still restoring.
		if r.ID == s.meta.SelectedNormalTabID && !meta.SelectedNormalTabID.Valid() {
			meta.SelectedNormalTabID = r.ID
		}
		if r.ID == s.meta.SelectedIncognitoTabID && !meta.SelectedIncognitoTabID.Valid() {
			meta.SelectedIncognitoTabID = r.ID
		}
	}
	return meta
}

func (s *Store) scheduleSave() {
	if s.destroyed {
		return
	}
	s.coalescer.Post(metadataSaveKey, func() {
		if s.destroyed || s.state == StateUninitialized || s.state == StateLoading {
			return
		}
		if err := s.saveMetadata(); err != nil {
			logging.FromContext(s.ctx).Error().Err(err).Msg("automatic metadata save failed")
		}
	})
}

// saveMetadata snapshots on the control loop and writes on the sequence. Writes whose
// content matches the last written file are skipped.
func (s *Store) saveMetadata() error {
	meta := s.snapshot()
	data, err := entity.EncodeMetadata(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	stable := *meta
	stable.SavedAt = time.Time{}
	fingerprint, err := entity.EncodeMetadata(&stable)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	activeID := entity.InvalidTabID
	if tab := s.selector.CurrentTab(); tab != nil {
		activeID = tab.ID
	}

	slot := s.cfg.Slot
	log := logging.FromContext(s.ctx)
	s.seq.Post(func() {
		if s.deps.Prefs != nil {
			if err := s.deps.Prefs.Set(s.ioCtx, LastActiveTabKey(slot), strconv.Itoa(int(activeID))); err != nil {
				log.Warn().Err(err).Msg("failed to write last active tab")
			}
		}

		if bytes.Equal(fingerprint, s.lastWritten) {
			metrics.MetadataWrites.WithLabelValues(metrics.StatusSkipped).Inc()
			return
		}
		start := s.deps.Clock.Now()
		err := s.deps.Metadata.Write(s.ioCtx, slot, data)
		metrics.IODuration.WithLabelValues(metrics.OperationMetadataWrite).Observe(s.deps.Clock.Since(start).Seconds())
		if err != nil {
			metrics.MetadataWrites.WithLabelValues(metrics.StatusError).Inc()
			log.Error().Err(err).Msg("failed to write tab metadata")
			return
		}
		s.lastWritten = fingerprint
		metrics.MetadataWrites.WithLabelValues(metrics.StatusOK).Inc()
		log.Debug().Int("tab_count", len(meta.Records)).Msg("tab metadata saved")
		s.post(func() { s.emit(MetadataSaved{Metadata: meta}) })
	})
	return nil
}

// writeBlob saves the current state of tab on the worker pool. Writes of different
// tabs overlap; writes of one tab are serialized by its lock.
func (s *Store) writeBlob(tab *entity.Tab) {
	if tab.State() == nil {
		return
	}
	key := entity.BlobKey{ID: tab.ID, Incognito: tab.Incognito}
	log := logging.FromContext(logging.WithTabID(s.ctx, int(tab.ID)))

	s.writes.Add(1)
	s.deps.Pool.Go(s.ioCtx, func(ctx context.Context) {
		defer s.writes.Done()

		mu := s.lockBlob(key.ID)
		defer mu.Unlock()
		state := tab.State()
		if s.isClosed(key.ID) || !tab.IsStateDirty() {
			metrics.BlobWrites.WithLabelValues(metrics.StatusSkipped).Inc()
			return
		}

		data, err := s.deps.Codec.Encode(state)
		if err == nil {
			start := s.deps.Clock.Now()
			err = s.deps.Blobs.Save(ctx, key, data)
			metrics.IODuration.WithLabelValues(metrics.OperationSave).Observe(s.deps.Clock.Since(start).Seconds())
		}
		if err != nil {
			metrics.BlobWrites.WithLabelValues(metrics.StatusError).Inc()
			log.Error().Err(err).Msg("failed to write tab state")
			return
		}
		tab.ClearStateDirty(state)
		metrics.BlobWrites.WithLabelValues(metrics.StatusOK).Inc()
	})
}

// deleteBlob removes the blob of key on the sequence. When final is set the tab is
// gone for good and later writes of it are skipped.
func (s *Store) deleteBlob(key entity.BlobKey, final bool) {
	if final {
		s.blobMu.Lock()
		s.closedIDs[key.ID] = true
		s.blobMu.Unlock()
	}
	s.states.Remove(key.ID)

	s.seq.Post(func() {
		mu := s.lockBlob(key.ID)
		start := s.deps.Clock.Now()
		err := s.deps.Blobs.Delete(s.ioCtx, key)
		metrics.IODuration.WithLabelValues(metrics.OperationDelete).Observe(s.deps.Clock.Since(start).Seconds())
		mu.Unlock()

		if final {
			s.blobMu.Lock()
			delete(s.blobLocks, key.ID)
			s.blobMu.Unlock()
		}
		if err != nil {
			logging.FromContext(s.ctx).Warn().Err(err).Int("tab_id", int(key.ID)).Msg("failed to delete tab state")
		}
	})
}

func (s *Store) deleteMetadata(slot int) {
	s.seq.Post(func() {
		if err := s.deps.Metadata.Delete(s.ioCtx, slot); err != nil {
			logging.FromContext(s.ctx).Warn().Err(err).Int("merge_slot", slot).Msg("failed to delete merged metadata")
		}
	})
}

func (s *Store) lockBlob(id entity.TabID) *sync.Mutex {
	s.blobMu.Lock()
	mu, ok := s.blobLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.blobLocks[id] = mu
	}
	s.blobMu.Unlock()
	mu.Lock()
	return mu
}

// reopen lifts the closed mark of an id that is live again in this window.
func (s *Store) reopen(id entity.TabID) {
	s.blobMu.Lock()
	delete(s.closedIDs, id)
	s.blobMu.Unlock()
}

func (s *Store) isClosed(id entity.TabID) bool {
	s.blobMu.Lock()
	defer s.blobMu.Unlock()
	return s.closedIDs[id]
}

// cleanupOrphans deletes blobs that no metadata file, live window or pending restore
// references. Listing happens on the pool; the live check runs on the control loop.
func (s *Store) cleanupOrphans() {
	log := logging.FromContext(s.ctx)

	s.deps.Pool.Go(s.ctx, func(ctx context.Context) {
		keys, err := s.deps.Blobs.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to list tab states")
			return
		}
		if len(keys) == 0 {
			return
		}
		for _, key := range keys {
			s.deps.IDs.EnsureAbove(key.ID)
		}
		slots, err := s.deps.Metadata.ListSlots(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to list metadata slots")
			return
		}
		referenced := make(map[entity.TabID]bool)
		for _, slot := range slots {
			meta, err := s.readMetadata(ctx, slot)
			if err != nil {
				// An unreadable file may still be recovered by hand; keep its blobs.
				log.Warn().Err(err).Int("merge_slot", slot).Msg("skipping orphan cleanup")
				return
			}
			for _, id := range meta.IDs() {
				referenced[id] = true
			}
		}

		s.post(func() {
			queued := make(map[entity.TabID]bool, len(s.queue))
			for _, r := range s.queue {
				queued[r.ID] = true
			}
			orphans := 0
			for _, key := range keys {
				if referenced[key.ID] || queued[key.ID] || s.selector.ModelOf(key.ID) != nil {
					continue
				}
				if s.deps.Locator != nil && s.deps.Locator.ContainsTab(key.ID) {
					continue
				}
				// No tab owns the id, so there is no write to fence off.
				s.deleteBlob(key, false)
				metrics.OrphanBlobsDeleted.Inc()
				orphans++
			}
			if orphans > 0 {
				log.Info().Int("orphans", orphans).Msg("deleted orphaned tab states")
			}
		})
	})
}

func (s *Store) onSelectorEvent(e tabmodel.SelectorEvent) {
	if s.destroyed {
		return
	}

	switch ev := e.(type) {
	case tabmodel.ModelSelected:
		s.scheduleSave()
	case tabmodel.CollectionChanged:
		if tabmodel.IsStructural(ev.Event) {
			s.scheduleSave()
		}
		switch ce := ev.Event.(type) {
		case tabmodel.TabAdded:
			s.reopen(ce.Tab.ID)
		case tabmodel.TabSelected:
			if ce.Tab != nil && ce.Tab.IsStateDirty() {
				s.writeBlob(ce.Tab)
			}
			s.scheduleSave()
		case tabmodel.TabClosed:
			s.deleteBlob(entity.BlobKey{ID: ce.Tab.ID, Incognito: ce.Tab.Incognito}, true)
		case tabmodel.AllTabsClosed:
			for _, tab := range ce.Tabs {
				s.deleteBlob(entity.BlobKey{ID: tab.ID, Incognito: tab.Incognito}, true)
			}
		}
	}
}

// waitIdle runs every wait function concurrently and returns when all of them
// returned or ctx is done.
func waitIdle(ctx context.Context, waits ...func()) error {
	done := make(chan struct{})
	go func() {
		var g errgroup.Group
		for _, wait := range waits {
			g.Go(func() error {
				wait()
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
