// Package window hands out window slots and keeps one selector and store pair per
// live window, plus a process-wide index of every tab.
package window

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/tabsession/internal/application/port"
	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
	"github.com/bnema/tabsession/internal/logging"
	"github.com/bnema/tabsession/internal/metrics"
)

// DefaultMaxSlots is the number of windows that can be open at once.
const DefaultMaxSlots = 3

var (
	// ErrUnknownSlot is returned for a slot no live window holds.
	ErrUnknownSlot = errors.New("no window holds this slot")
	// ErrUnknownWindow is returned for an identity that holds no slot.
	ErrUnknownWindow = errors.New("window holds no slot")
	// ErrClosed is returned once the manager has been closed.
	ErrClosed = errors.New("window manager closed")
)

// Config tunes a Manager.
type Config struct {
	MaxSlots int
	// MergeOrphanedSlots makes the first window restore the tabs of slots no window
	// claims, such as windows that were open when the process died.
	MergeOrphanedSlots bool
	// Store is the template for every window's store; Slot and MergeSlots are set per window.
	Store tabstore.Config
}

// Deps are shared by every window.
type Deps struct {
	Metadata repository.MetadataRepository
	Blobs    repository.TabStateRepository
	Prefs    repository.PreferenceRepository
	Codec    port.BlobCodec
	// Factory is optional; a DefaultFactory over IDs is used when nil.
	Factory   port.TabFactory
	Placement tabmodel.PlacementPolicy
	IDs       *entity.IDAllocator
	Pool      *taskrunner.Pool
	Clock     clockwork.Clock
}

type location struct {
	slot int
	tab  *entity.Tab
}

// Manager assigns slots to windows. It is safe for concurrent use; its lock is never
// held while a window's loop runs on its behalf.
type Manager struct {
	cfg  Config
	deps Deps
	ctx  context.Context

	mu         sync.Mutex
	bySlot     map[int]*Window
	byIdentity map[string]*Window
	index      map[entity.TabID]location
	closed     bool
}

// NewManager creates a manager without windows.
func NewManager(ctx context.Context, deps Deps, cfg Config) *Manager {
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = DefaultMaxSlots
	}
	if deps.IDs == nil {
		deps.IDs = entity.NewIDAllocator()
	}
	if deps.Factory == nil {
		deps.Factory = tabmodel.NewDefaultFactory(deps.IDs)
	}
	if deps.Pool == nil {
		deps.Pool = taskrunner.NewPool(4)
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	return &Manager{
		cfg:        cfg,
		deps:       deps,
		ctx:        logging.WithComponent(ctx, "window"),
		bySlot:     make(map[int]*Window),
		byIdentity: make(map[string]*Window),
		index:      make(map[entity.TabID]location),
	}
}

// RequestSlot binds identity to a slot: preferred when it is free, else the lowest free
// one. It reports false when every slot is taken. A window asking again gets its
// current slot back.
func (m *Manager) RequestSlot(ctx context.Context, identity string, preferred int) (*Window, bool) {
	log := logging.FromContext(m.ctx)

	var orphaned []int
	if m.cfg.MergeOrphanedSlots {
		slots, err := m.deps.Metadata.ListSlots(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to list metadata slots")
		}
		orphaned = slots
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false
	}
	if w, ok := m.byIdentity[identity]; ok && !w.releasing {
		metrics.SlotRequests.WithLabelValues(metrics.SlotReused).Inc()
		return w, true
	}

	slot := -1
	if preferred >= 0 && preferred < m.cfg.MaxSlots && m.bySlot[preferred] == nil {
		slot = preferred
	} else {
		for i := 0; i < m.cfg.MaxSlots; i++ {
			if m.bySlot[i] == nil {
				slot = i
				break
			}
		}
	}
	if slot < 0 {
		metrics.SlotRequests.WithLabelValues(metrics.SlotExhausted).Inc()
		log.Warn().Str("window", identity).Int("max_slots", m.cfg.MaxSlots).Msg("no free window slot")
		return nil, false
	}

	var merge []int
	if len(m.bySlot) == 0 {
		for _, s := range orphaned {
			if s != slot {
				merge = append(merge, s)
			}
		}
	}

	w := m.newWindow(slot, identity, merge)
	m.bySlot[slot] = w
	m.byIdentity[identity] = w
	metrics.SlotRequests.WithLabelValues(metrics.SlotGranted).Inc()
	metrics.LiveWindows.Inc()

	log.Info().Str("window", identity).Int("slot", slot).Ints("merge_slots", merge).Msg("window slot granted")
	return w, true
}

func (m *Manager) newWindow(slot int, identity string, merge []int) *Window {
	loop := taskrunner.NewLoop()
	selector := tabmodel.NewSelector(m.deps.Factory,
		tabmodel.WithLocator(m),
		tabmodel.WithPlacement(m.deps.Placement),
	)
	// Fresh collections of the right flavors cannot fail.
	_ = selector.Initialize(tabmodel.NewCollection(entity.Normal), tabmodel.NewCollection(entity.Incognito))

	cfg := m.cfg.Store
	cfg.Slot = slot
	cfg.MergeSlots = merge
	store := tabstore.New(logging.WithWindow(m.ctx, identity), selector, tabstore.Deps{
		Metadata: m.deps.Metadata,
		Blobs:    m.deps.Blobs,
		Prefs:    m.deps.Prefs,
		Codec:    m.deps.Codec,
		Factory:  m.deps.Factory,
		Locator:  m,
		IDs:      m.deps.IDs,
		Loop:     loop,
		Pool:     m.deps.Pool,
		Clock:    m.deps.Clock,
	}, cfg)

	w := &Window{
		Slot:     slot,
		Identity: identity,
		Loop:     loop,
		Selector: selector,
		Store:    store,
	}
	w.unsubscribe = selector.Subscribe(func(e tabmodel.SelectorEvent) {
		if cc, ok := e.(tabmodel.CollectionChanged); ok {
			m.track(slot, cc.Event)
		}
	})
	return w
}

// ReleaseSlot flushes the window's state, destroys its pair and frees the slot. The
// metadata on disk stays for a later window. It must not be called from the window's
// own loop. The identity can request a new slot while the release is still running.
func (m *Manager) ReleaseSlot(ctx context.Context, identity string) error {
	m.mu.Lock()
	w, ok := m.byIdentity[identity]
	if ok && w.releasing {
		ok = false
	}
	if ok {
		w.releasing = true
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("release %q: %w", identity, ErrUnknownWindow)
	}

	err := w.shutdown(ctx)
	m.forget(w)

	log := logging.FromContext(m.ctx)
	if err != nil {
		log.Error().Err(err).Str("window", identity).Int("slot", w.Slot).Msg("window released with errors")
		return err
	}
	log.Info().Str("window", identity).Int("slot", w.Slot).Msg("window slot released")
	return nil
}

func (m *Manager) forget(w *Window) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bySlot[w.Slot] != w {
		return
	}
	delete(m.bySlot, w.Slot)
	if m.byIdentity[w.Identity] == w {
		delete(m.byIdentity, w.Identity)
	}
	for id, loc := range m.index {
		if loc.slot == w.Slot {
			delete(m.index, id)
			metrics.LiveTabs.WithLabelValues(metrics.Visibility(loc.tab.Incognito)).Dec()
		}
	}
	metrics.LiveWindows.Dec()
}

// SlotForWindow returns the slot held by identity.
func (m *Manager) SlotForWindow(identity string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byIdentity[identity]
	if !ok || w.releasing {
		return -1, false
	}
	return w.Slot, true
}

// Window returns the window holding slot, or nil.
func (m *Manager) Window(slot int) *Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bySlot[slot]
}

// LiveSlots returns the held slots, ascending.
func (m *Manager) LiveSlots() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]int, 0, len(m.bySlot))
	for slot := range m.bySlot {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots
}

// TabByID finds a tab in any live window. Tabs waiting for undo are still found.
func (m *Manager) TabByID(id entity.TabID) (*entity.Tab, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.index[id]
	if !ok {
		return nil, -1, false
	}
	return loc.tab, loc.slot, true
}

// ContainsTab implements port.TabLocator.
func (m *Manager) ContainsTab(id entity.TabID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[id]
	return ok
}

// ReparentTab moves a tab to the window holding toSlot, inserting it at index. incognito
// must match the tab's visibility. It must not be called from a window loop.
func (m *Manager) ReparentTab(ctx context.Context, id entity.TabID, toSlot, index int, incognito bool) error {
	m.mu.Lock()
	loc, ok := m.index[id]
	var src, dst *Window
	if ok {
		src = m.bySlot[loc.slot]
		dst = m.bySlot[toSlot]
	}
	m.mu.Unlock()

	switch {
	case !ok || src == nil:
		return fmt.Errorf("reparent tab %d: %w", id, tabmodel.ErrTabNotFound)
	case dst == nil:
		return fmt.Errorf("reparent tab %d to slot %d: %w", id, toSlot, ErrUnknownSlot)
	case loc.tab.Incognito != incognito:
		return fmt.Errorf("reparent tab %d: %w", id, tabmodel.ErrVisibilityMismatch)
	}

	if src == dst {
		var err error
		if doErr := src.Do(ctx, func() { err = src.Selector.Model(incognito).Move(id, index) }); doErr != nil {
			return doErr
		}
		return err
	}

	var (
		tab     *entity.Tab
		fromIdx int
		err     error
	)
	if doErr := src.Do(ctx, func() {
		fromIdx = src.Selector.Model(incognito).IndexOf(id)
		tab, err = src.Selector.DetachTab(id)
	}); doErr != nil {
		return doErr
	}
	if err != nil {
		return fmt.Errorf("detach tab %d: %w", id, err)
	}

	tab.LaunchType = entity.LaunchFromReparenting
	if doErr := dst.Do(ctx, func() { err = dst.Selector.AddTab(tab, index) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		// Put the tab back where it was so it is not lost.
		_ = src.Do(context.WithoutCancel(ctx), func() { _ = src.Selector.AddTab(tab, fromIdx) })
		return fmt.Errorf("attach tab %d to slot %d: %w", id, toSlot, err)
	}

	logging.FromContext(m.ctx).Debug().
		Int("tab_id", int(id)).
		Int("from_slot", src.Slot).
		Int("to_slot", toSlot).
		Msg("tab reparented")
	return nil
}

// SetSaveDebounce changes the save quiet period of live windows and of windows created
// later.
func (m *Manager) SetSaveDebounce(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.Store.SaveDebounce = d
	for _, w := range m.bySlot {
		w.Store.SetSaveDebounce(d)
	}
}

// Close releases every window concurrently. The manager refuses new slots afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	identities := make([]string, 0, len(m.byIdentity))
	for identity, w := range m.byIdentity {
		if !w.releasing {
			identities = append(identities, identity)
		}
	}
	m.mu.Unlock()

	var g errgroup.Group
	for _, identity := range identities {
		g.Go(func() error {
			return m.ReleaseSlot(ctx, identity)
		})
	}
	return g.Wait()
}

// track keeps the global index in step with one window's collections. It runs on that
// window's loop.
func (m *Manager) track(slot int, e tabmodel.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev := e.(type) {
	case tabmodel.TabAdded:
		m.addLocked(slot, ev.Tab)
	case tabmodel.TabClosureUndone:
		m.addLocked(slot, ev.Tab)
	case tabmodel.TabClosed:
		m.removeLocked(slot, ev.Tab)
	case tabmodel.AllTabsClosed:
		for _, tab := range ev.Tabs {
			m.removeLocked(slot, tab)
		}
	case tabmodel.TabDetached:
		m.removeLocked(slot, ev.Tab)
	}
}

func (m *Manager) addLocked(slot int, tab *entity.Tab) {
	if _, ok := m.index[tab.ID]; !ok {
		metrics.LiveTabs.WithLabelValues(metrics.Visibility(tab.Incognito)).Inc()
	}
	m.index[tab.ID] = location{slot: slot, tab: tab}
}

func (m *Manager) removeLocked(slot int, tab *entity.Tab) {
	loc, ok := m.index[tab.ID]
	if !ok || loc.slot != slot {
		return
	}
	delete(m.index, tab.ID)
	metrics.LiveTabs.WithLabelValues(metrics.Visibility(tab.Incognito)).Dec()
}
