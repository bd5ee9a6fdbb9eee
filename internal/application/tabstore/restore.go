package tabstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/logging"
	"github.com/bnema/tabsession/internal/metrics"
)

// RestoreTabs rebuilds the records read by LoadState, one at a time in the background.
// With startAtActiveTab the previously active tab is restored first and selected.
// Final tab order always follows the persisted order. ctx only bounds the call; the
// restore itself runs until it completes or the store is destroyed.
func (s *Store) RestoreTabs(ctx context.Context, startAtActiveTab bool) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.state != StateRestoring && s.state != StateFailed {
		return fmt.Errorf("restore tabs in %s: %w", s.state, ErrInvalidState)
	}
	if s.restoreCancel != nil {
		return fmt.Errorf("restore already running: %w", ErrInvalidState)
	}

	s.state = StateRestoring
	s.startAtActive = startAtActiveTab
	if startAtActiveTab && s.activeID.Valid() {
		if i := slices.IndexFunc(s.queue, func(r entity.RestoreRecord) bool { return r.ID == s.activeID }); i > 0 {
			active := s.queue[i]
			s.queue = slices.Delete(s.queue, i, i+1)
			s.queue = slices.Insert(s.queue, 0, active)
		}
	}

	s.restoreCtx, s.restoreCancel = context.WithCancel(s.ctx)
	s.loadNext()
	return nil
}

// CancelLoadingTabs drops every queued record of the given visibility. A load of that
// visibility already in flight is discarded when it completes.
func (s *Store) CancelLoadingTabs(incognito bool) {
	s.queue = slices.DeleteFunc(s.queue, func(r entity.RestoreRecord) bool {
		return r.IsIncognito() == incognito
	})
	if s.current != nil && s.current.IsIncognito() == incognito {
		s.discardCurrent = true
	}
}

// RemoveTabFromQueues forgets the record of id so it is neither restored nor saved.
func (s *Store) RemoveTabFromQueues(id entity.TabID) {
	s.queue = slices.DeleteFunc(s.queue, func(r entity.RestoreRecord) bool { return r.ID == id })
	if s.current != nil && s.current.ID == id {
		s.discardCurrent = true
	}
}

// RestoreTabStateForID restores the queued record of id right away, reading its blob
// on the calling goroutine. It reports whether a tab was restored.
func (s *Store) RestoreTabStateForID(ctx context.Context, id entity.TabID) bool {
	if s.destroyed {
		return false
	}
	i := slices.IndexFunc(s.queue, func(r entity.RestoreRecord) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	rec := s.queue[i]
	s.queue = slices.Delete(s.queue, i, i+1)

	state, err := s.takeOrLoad(ctx, rec)
	return s.applyRestored(ctx, rec, state, err)
}

func (s *Store) cancelRestore() {
	if s.restoreCancel != nil {
		s.restoreCancel()
	}
	if s.current != nil {
		s.discardCurrent = true
	}
}

// loadNext starts the blob load of the next queued record.
func (s *Store) loadNext() {
	if s.destroyed || s.current != nil {
		return
	}
	ctx := s.restoreCtx
	if len(s.queue) == 0 || ctx == nil || ctx.Err() != nil {
		s.finishRestore()
		return
	}

	rec := s.queue[0]
	s.queue = s.queue[1:]
	s.current = &rec
	s.discardCurrent = false

	s.deps.Pool.Go(ctx, func(ctx context.Context) {
		state, err := s.takeOrLoad(ctx, rec)
		s.post(func() {
			s.current = nil
			if ctx.Err() != nil || s.discardCurrent {
				metrics.TabsRestored.WithLabelValues(metrics.OutcomeDiscarded).Inc()
				s.discardCurrent = false
			} else {
				s.applyRestored(s.ctx, rec, state, err)
			}
			s.loadNext()
		})
	})
}

func (s *Store) takeOrLoad(ctx context.Context, rec entity.RestoreRecord) (*entity.TabState, error) {
	if state, ok := s.states.Take(rec.ID); ok && (!rec.IncognitoKnown() || state.Incognito == rec.IsIncognito()) {
		if rec.ID == s.activeID {
			metrics.PrefetchResults.WithLabelValues(metrics.PrefetchHit).Inc()
		}
		return state, nil
	}
	if rec.ID == s.activeID {
		metrics.PrefetchResults.WithLabelValues(metrics.PrefetchMiss).Inc()
	}
	return s.loadTabState(ctx, rec.ID, rec.Incognito)
}

// applyRestored turns a record and its loaded state into a tab. Tabs without a usable
// blob come back from their URL unless they are known to be incognito, in which case
// they are dropped.
func (s *Store) applyRestored(ctx context.Context, rec entity.RestoreRecord, state *entity.TabState, loadErr error) bool {
	log := logging.FromContext(logging.WithTabID(s.ctx, int(rec.ID)))
	s.states.Remove(rec.ID)

	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("tab state unusable, treating as missing")
		state = nil
	}
	if s.selector.ModelOf(rec.ID) != nil || (rec.FromMerge && s.deps.Locator != nil && s.deps.Locator.ContainsTab(rec.ID)) {
		log.Debug().Msg("tab already live, skipping restore")
		metrics.TabsRestored.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return false
	}

	var (
		tab     *entity.Tab
		err     error
		outcome string
	)
	switch {
	case state != nil && state.Incognito && s.ignoreIncognito:
		metrics.TabsRestored.WithLabelValues(metrics.OutcomeDroppedIncognito).Inc()
		return false
	case state != nil:
		tab, err = s.deps.Factory.CreateFrozenTab(ctx, state, rec.ID, rec.URL)
		outcome = metrics.OutcomeFull
	case rec.IsIncognito():
		log.Info().Msg("incognito tab state missing, dropping tab")
		metrics.TabsRestored.WithLabelValues(metrics.OutcomeDroppedIncognito).Inc()
		return false
	default:
		if !rec.IncognitoKnown() {
			log.Warn().Str("url", rec.URL).Msg("tab of unknown visibility has no state, restoring as normal tab")
		}
		params := entity.NewLoadURLParamsWithID(rec.URL, rec.ID)
		tab, err = s.deps.Factory.CreateTab(ctx, params, entity.LaunchFromRestore, nil, false)
		outcome = metrics.OutcomeURLOnly
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create restored tab")
		return false
	}

	v := tab.Visibility()
	model := s.selector.Model(v.IsIncognito())
	if err := s.selector.AddTab(tab, s.insertionIndex(model, v, rec.Index)); err != nil {
		log.Error().Err(err).Msg("failed to add restored tab")
		return false
	}

	entries := s.restored[v]
	pos, _ := slices.BinarySearchFunc(entries, rec.Index, func(e restoredEntry, index int) int { return e.index - index })
	s.restored[v] = slices.Insert(entries, pos, restoredEntry{index: rec.Index, id: tab.ID})
	s.restoredCount++
	metrics.TabsRestored.WithLabelValues(outcome).Inc()

	if s.startAtActive && tab.ID == s.activeID {
		s.selectTab(tab)
	}
	log.Debug().Str("outcome", outcome).Int("index", rec.Index).Msg("tab restored")
	return true
}

// insertionIndex places a restored record before the first already restored record
// that followed it on disk.
func (s *Store) insertionIndex(model *tabmodel.Collection, v entity.Visibility, index int) int {
	for _, e := range s.restored[v] {
		if e.index <= index {
			continue
		}
		if pos := model.IndexOf(e.id); pos >= 0 {
			return pos
		}
	}
	return model.Count()
}

func (s *Store) selectTab(tab *entity.Tab) {
	model := s.selector.Model(tab.Incognito)
	if pos := model.IndexOf(tab.ID); pos >= 0 {
		_ = model.Select(pos)
	}
}

func (s *Store) finishRestore() {
	if s.restoreCancel != nil {
		s.restoreCancel()
		s.restoreCancel = nil
	}
	s.restoreCtx = nil
	s.state = StateReady
	log := logging.FromContext(s.ctx)

	if !s.loadedOnce {
		s.loadedOnce = true
		if !s.startAtActive {
			if tab := s.selector.Model(false).Find(s.meta.SelectedNormalTabID); tab != nil {
				s.selectTab(tab)
			}
		}
		if tab := s.selector.Model(true).Find(s.meta.SelectedIncognitoTabID); tab != nil {
			s.selectTab(tab)
		}
		log.Info().
			Int("restored", s.restoredCount).
			Int("tab_count", s.tabCountAtStartup).
			Msg("tab restore finished")
		s.emit(StateLoaded{RestoredCount: s.restoredCount})
	}

	if len(s.mergeSlots) > 0 {
		slots := s.mergeSlots
		merged := s.mergedCount
		s.mergeSlots = nil
		s.mergedCount = 0
		for _, slot := range slots {
			s.deleteMetadata(slot)
		}
		log.Info().Ints("slots", slots).Int("merged", merged).Msg("tab state merged")
		s.emit(StateMerged{Slots: slots, MergedCount: merged})
	}

	s.scheduleSave()
	s.cleanupOrphans()
}
