// Package tabstore persists the tabs of one window and restores them after a restart.
//
// A Store belongs to a single window. Every exported method except WaitForWrites must
// be called on that window's control loop; disk I/O is handed to a worker pool and a
// per-window write sequence, and results come back through the loop.
package tabstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/tabsession/internal/application/port"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/event"
	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/infrastructure/cache"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
	"github.com/bnema/tabsession/internal/logging"
	"github.com/bnema/tabsession/internal/metrics"
)

const (
	metadataSaveKey = "metadata"

	// DefaultSaveDebounce is the quiet period before a burst of changes is saved.
	DefaultSaveDebounce = 500 * time.Millisecond
	// DefaultCacheSize is the number of loaded tab states kept for the restore path.
	DefaultCacheSize = 8
)

// LastActiveTabKey is the preference key holding the active tab id of slot.
func LastActiveTabKey(slot int) string {
	return "lastActiveTabId." + strconv.Itoa(slot)
}

// Poster hands work to the window's control loop.
type Poster interface {
	Post(fn func()) bool
}

// Config tunes a Store.
type Config struct {
	Slot int
	// MergeSlots are read by LoadState and restored after this slot's own records.
	MergeSlots   []int
	SaveDebounce time.Duration
	CacheSize    int
}

// Deps are the collaborators of a Store.
type Deps struct {
	Metadata repository.MetadataRepository
	Blobs    repository.TabStateRepository
	Prefs    repository.PreferenceRepository
	Codec    port.BlobCodec
	Factory  port.TabFactory
	// Locator is optional. When set, records live in another window are skipped.
	Locator port.TabLocator
	IDs     *entity.IDAllocator
	Loop    Poster
	Pool    *taskrunner.Pool
	Clock   clockwork.Clock
}

type restoredEntry struct {
	index int
	id    entity.TabID
}

// Store is the persistent store of one window.
type Store struct {
	cfg      Config
	deps     Deps
	selector *tabmodel.Selector

	ctx    context.Context
	cancel context.CancelFunc
	// ioCtx outlives Destroy so scheduled writes still reach the disk.
	ioCtx context.Context

	state     State
	destroyed bool
	observers event.Feed[Event]
	unsub     func()

	seq       *taskrunner.Sequence
	coalescer *taskrunner.Coalescer
	writes    sync.WaitGroup
	states    *cache.LRU[entity.TabID, *entity.TabState]
	loads     singleflight.Group

	blobMu    sync.Mutex
	blobLocks map[entity.TabID]*sync.Mutex
	closedIDs map[entity.TabID]bool

	// Owned by the write sequence.
	lastWritten []byte

	// Restore bookkeeping, owned by the control loop.
	meta              *entity.Metadata
	ignoreIncognito   bool
	startAtActive     bool
	activeID          entity.TabID
	seen              map[entity.TabID]bool
	queue             []entity.RestoreRecord
	current           *entity.RestoreRecord
	discardCurrent    bool
	restoreCtx        context.Context
	restoreCancel     context.CancelFunc
	restored          map[entity.Visibility][]restoredEntry
	restoredCount     int
	tabCountAtStartup int
	loadedOnce        bool
	mergeSlots        []int
	mergedCount       int
}

// New creates the store of one window and starts prefetching the tab that was active
// when the window was last saved. selector must already be initialized.
func New(ctx context.Context, selector *tabmodel.Selector, deps Deps, cfg Config) *Store {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.IDs == nil {
		deps.IDs = entity.NewIDAllocator()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	ctx = logging.WithSlot(logging.WithComponent(ctx, "tabstore"), cfg.Slot)
	ctx, cancel := context.WithCancel(ctx)

	s := &Store{
		cfg:       cfg,
		deps:      deps,
		selector:  selector,
		ctx:       ctx,
		cancel:    cancel,
		ioCtx:     context.WithoutCancel(ctx),
		seq:       taskrunner.NewSequence(),
		blobLocks: make(map[entity.TabID]*sync.Mutex),
		closedIDs: make(map[entity.TabID]bool),
		meta:      entity.EmptyMetadata(),
		activeID:  entity.InvalidTabID,
		seen:      make(map[entity.TabID]bool),
		restored:  make(map[entity.Visibility][]restoredEntry),
	}
	s.states = cache.NewLRU[entity.TabID, *entity.TabState](cfg.CacheSize, func(entity.TabID, *entity.TabState) {
		metrics.CacheEvictions.Inc()
	})
	s.coalescer = taskrunner.NewCoalescer(deps.Loop.Post, deps.Clock, cfg.SaveDebounce)
	s.unsub = selector.Subscribe(s.onSelectorEvent)

	s.startPrefetch()
	return s
}

// AddObserver registers fn for store events. Observers run on the control loop in
// registration order.
func (s *Store) AddObserver(fn func(Event)) (remove func()) {
	return s.observers.Subscribe(fn)
}

// State returns the lifecycle phase.
func (s *Store) State() State {
	return s.state
}

// Slot returns the window slot this store persists.
func (s *Store) Slot() int {
	return s.cfg.Slot
}

// RestoredTabCount returns how many tabs restore has added so far.
func (s *Store) RestoredTabCount() int {
	return s.restoredCount
}

// SetSaveDebounce changes the quiet period of automatic metadata saves.
func (s *Store) SetSaveDebounce(d time.Duration) {
	s.coalescer.SetDelay(d)
}

// Destroy stops the store: in-flight restores are cancelled and their results
// dropped, automatic saves stop, and the call waits for writes already scheduled.
func (s *Store) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	s.cancelRestore()
	s.queue = nil
	s.coalescer.Destroy()
	if s.unsub != nil {
		s.unsub()
	}

	s.seq.Close()
	s.seq.Wait()
	s.writes.Wait()
	s.cancel()

	logging.FromContext(s.ctx).Debug().Msg("tab store destroyed")
}

// WaitForWrites blocks until every scheduled metadata and blob write has finished.
// It is safe to call from any goroutine.
func (s *Store) WaitForWrites(ctx context.Context) error {
	return waitIdle(ctx, s.seq.Wait, s.writes.Wait)
}

func (s *Store) emit(e Event) {
	if s.destroyed {
		return
	}
	s.observers.Emit(e)
}

func (s *Store) post(fn func()) {
	s.deps.Loop.Post(func() {
		if s.destroyed {
			return
		}
		fn()
	})
}
