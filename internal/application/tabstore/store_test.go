package tabstore_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/infrastructure/persistence/filestore"
	"github.com/bnema/tabsession/internal/infrastructure/tabstate"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
	"github.com/bnema/tabsession/internal/metrics"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type countingMetadata struct {
	repository.MetadataRepository
	writes atomic.Int32
	// onWrite runs before each write reaches the repository.
	onWrite atomic.Pointer[func()]
}

func (m *countingMetadata) Write(ctx context.Context, slot int, data []byte) error {
	m.writes.Add(1)
	if fn := m.onWrite.Load(); fn != nil {
		(*fn)()
	}
	return m.MetadataRepository.Write(ctx, slot, data)
}

type gatedBlobs struct {
	repository.TabStateRepository
	gate  chan struct{}
	loads atomic.Int32
}

func (b *gatedBlobs) Load(ctx context.Context, key entity.BlobKey) ([]byte, error) {
	b.loads.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	return b.TabStateRepository.Load(ctx, key)
}

type harness struct {
	t        *testing.T
	dir      string
	loop     *taskrunner.Loop
	pool     *taskrunner.Pool
	ids      *entity.IDAllocator
	clock    *clockwork.FakeClock
	metadata *countingMetadata
	blobs    *gatedBlobs
	selector *tabmodel.Selector
	store    *tabstore.Store
	events   []tabstore.Event
}

type harnessOption func(*harness, *tabstore.Config)

func withGate(gate chan struct{}) harnessOption {
	return func(h *harness, _ *tabstore.Config) { h.blobs.gate = gate }
}

func withConfig(fn func(*tabstore.Config)) harnessOption {
	return func(_ *harness, cfg *tabstore.Config) { fn(cfg) }
}

func newHarness(t *testing.T, dir string, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		dir:      dir,
		loop:     taskrunner.NewLoop(),
		pool:     taskrunner.NewPool(4),
		ids:      entity.NewIDAllocator(),
		clock:    clockwork.NewFakeClock(),
		metadata: &countingMetadata{MetadataRepository: filestore.NewMetadataRepository(dir)},
		blobs:    &gatedBlobs{TabStateRepository: filestore.NewTabStateRepository(dir)},
	}
	cfg := tabstore.Config{Slot: 0}
	for _, opt := range opts {
		opt(h, &cfg)
	}

	codec, err := tabstate.NewCodec(testKey)
	require.NoError(t, err)
	factory := tabmodel.NewDefaultFactory(h.ids)
	deps := tabstore.Deps{
		Metadata: h.metadata,
		Blobs:    h.blobs,
		Prefs:    filestore.NewPreferenceRepository(dir),
		Codec:    codec,
		Factory:  factory,
		IDs:      h.ids,
		Loop:     h.loop,
		Pool:     h.pool,
		Clock:    h.clock,
	}

	var initErr error
	h.do(func() {
		h.selector = tabmodel.NewSelector(factory)
		initErr = h.selector.Initialize(tabmodel.NewCollection(entity.Normal), tabmodel.NewCollection(entity.Incognito))
		h.store = tabstore.New(context.Background(), h.selector, deps, cfg)
		h.store.AddObserver(func(e tabstore.Event) { h.events = append(h.events, e) })
	})
	require.NoError(t, initErr)

	t.Cleanup(h.close)
	return h
}

func (h *harness) do(fn func()) {
	h.t.Helper()
	require.NoError(h.t, h.loop.Do(context.Background(), fn))
}

func (h *harness) close() {
	_ = h.loop.Do(context.Background(), func() { h.store.Destroy() })
	h.pool.Wait()
	h.loop.Stop()
}

func (h *harness) load(ignoreIncognito bool) int {
	h.t.Helper()
	var (
		n   int
		err error
	)
	h.do(func() { n, err = h.store.LoadState(context.Background(), ignoreIncognito) })
	require.NoError(h.t, err)
	return n
}

func (h *harness) restore(startAtActive bool) {
	h.t.Helper()
	var err error
	h.do(func() { err = h.store.RestoreTabs(context.Background(), startAtActive) })
	require.NoError(h.t, err)
	h.waitReady()
}

func (h *harness) waitReady() {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		var state tabstore.State
		if err := h.loop.Do(context.Background(), func() { state = h.store.State() }); err != nil {
			return false
		}
		return state == tabstore.StateReady
	}, 2*time.Second, 5*time.Millisecond)
}

// settle waits for background reads, loop follow-ups and writes to drain.
func (h *harness) settle() {
	h.t.Helper()
	h.do(func() {})
	h.pool.Wait()
	h.do(func() {})
	require.NoError(h.t, h.store.WaitForWrites(context.Background()))
}

func (h *harness) tabIDs(incognito bool) []entity.TabID {
	var ids []entity.TabID
	h.do(func() {
		for _, tab := range h.selector.Model(incognito).Tabs() {
			ids = append(ids, tab.ID)
		}
	})
	return ids
}

func (h *harness) eventsSnapshot() []tabstore.Event {
	var out []tabstore.Event
	h.do(func() { out = append(out, h.events...) })
	return out
}

func normalRecord(id int, url string) entity.RestoreRecord {
	return entity.RestoreRecord{ID: entity.TabID(id), URL: url, Incognito: entity.BoolPtr(false)}
}

func incognitoRecord(id int, url string) entity.RestoreRecord {
	return entity.RestoreRecord{ID: entity.TabID(id), URL: url, Incognito: entity.BoolPtr(true)}
}

func writeMetadata(t *testing.T, dir string, slot int, selected entity.TabID, records ...entity.RestoreRecord) {
	t.Helper()
	meta := entity.EmptyMetadata()
	meta.Records = records
	meta.SelectedNormalTabID = selected
	data, err := entity.EncodeMetadata(meta)
	require.NoError(t, err)
	require.NoError(t, filestore.NewMetadataRepository(dir).Write(context.Background(), slot, data))
}

func writeBlob(t *testing.T, dir string, id int, incognito bool, payload string) {
	t.Helper()
	codec, err := tabstate.NewCodec(testKey)
	require.NoError(t, err)
	data, err := codec.Encode(entity.NewTabState([]byte(payload), incognito))
	require.NoError(t, err)
	key := entity.BlobKey{ID: entity.TabID(id), Incognito: incognito}
	require.NoError(t, filestore.NewTabStateRepository(dir).Save(context.Background(), key, data))
}

func blobExists(t *testing.T, dir string, id int, incognito bool) bool {
	t.Helper()
	data, err := filestore.NewTabStateRepository(dir).Load(context.Background(), entity.BlobKey{ID: entity.TabID(id), Incognito: incognito})
	require.NoError(t, err)
	return data != nil
}

func readMetadata(t *testing.T, dir string, slot int) *entity.Metadata {
	t.Helper()
	data, err := filestore.NewMetadataRepository(dir).Read(context.Background(), slot)
	require.NoError(t, err)
	if data == nil {
		return nil
	}
	meta, err := entity.DecodeMetadata(data)
	require.NoError(t, err)
	return meta
}

func TestStore_RestoresMissingBlobAsURLOnlyTab(t *testing.T) {
	dir := t.TempDir()
	raw := `{"version":1,"records":[{"id":2,"url":"https://a"},{"id":3,"url":"https://b"}],"selected_normal_tab_id":3,"selected_incognito_tab_id":-1}`
	require.NoError(t, filestore.NewMetadataRepository(dir).Write(context.Background(), 0, []byte(raw)))
	writeBlob(t, dir, 2, false, "a-state")
	writeBlob(t, dir, 3, false, "b-state")
	require.NoError(t, filestore.NewTabStateRepository(dir).Delete(context.Background(), entity.BlobKey{ID: 2}))

	h := newHarness(t, dir)
	assert.Equal(t, 2, h.load(false))
	h.restore(true)

	events := h.eventsSnapshot()
	require.GreaterOrEqual(t, len(events), 3)
	assert.Equal(t, tabstore.Initialized{TabCountAtStartup: 2}, events[0])
	first, ok := events[1].(tabstore.DetailsRead)
	require.True(t, ok)
	second, ok := events[2].(tabstore.DetailsRead)
	require.True(t, ok)
	assert.Equal(t, entity.TabID(2), first.Record.ID)
	assert.Equal(t, entity.TabID(3), second.Record.ID)
	assert.Contains(t, events, tabstore.StateLoaded{RestoredCount: 2})

	var (
		count     int
		currentID entity.TabID
		urlOnly   *entity.Tab
		fullState *entity.TabState
	)
	h.do(func() {
		model := h.selector.Model(false)
		count = model.Count()
		currentID = model.Current().ID
		urlOnly = model.Find(2)
		fullState = model.Find(3).State()
	})
	assert.Equal(t, 2, count)
	assert.Equal(t, entity.TabID(3), currentID)
	require.NotNil(t, urlOnly)
	assert.Equal(t, "https://a", urlOnly.URL)
	assert.Nil(t, urlOnly.State(), "no prior render state")
	require.NotNil(t, fullState)
	assert.Equal(t, "b-state", string(fullState.Payload))
	assert.Equal(t, []entity.TabID{2, 3}, h.tabIDs(false))
	assert.Greater(t, int(h.ids.Peek()), 3)
}

func TestStore_RestoreStartingAtActiveKeepsPersistedOrder(t *testing.T) {
	dir := t.TempDir()
	records := []entity.RestoreRecord{
		incognitoRecord(10, "https://i1"),
		normalRecord(1, "https://1"),
		normalRecord(2, "https://2"),
		normalRecord(3, "https://3"),
		normalRecord(4, "https://4"),
		normalRecord(5, "https://5"),
	}
	records[4].IsNormalActiveIndex = true
	writeMetadata(t, dir, 0, 4, records...)
	writeBlob(t, dir, 10, true, "i1")
	for id := 1; id <= 5; id++ {
		writeBlob(t, dir, id, false, "state")
	}

	h := newHarness(t, dir)
	assert.Equal(t, 6, h.load(false))
	h.restore(true)

	assert.Equal(t, []entity.TabID{1, 2, 3, 4, 5}, h.tabIDs(false))
	assert.Equal(t, []entity.TabID{10}, h.tabIDs(true))
	var current entity.TabID
	h.do(func() { current = h.selector.Model(false).Current().ID })
	assert.Equal(t, entity.TabID(4), current)
}

func TestStore_IncognitoTabs(t *testing.T) {
	tests := []struct {
		name            string
		ignoreIncognito bool
		withBlob        bool
		wantIncognito   []entity.TabID
	}{
		{name: "restored with blob", withBlob: true, wantIncognito: []entity.TabID{7}},
		{name: "dropped without blob", withBlob: false},
		{name: "ignored", ignoreIncognito: true, withBlob: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeMetadata(t, dir, 0, 1, incognitoRecord(7, "https://secret"), normalRecord(1, "https://a"))
			if tt.withBlob {
				writeBlob(t, dir, 7, true, "secret")
			}

			h := newHarness(t, dir)
			h.load(tt.ignoreIncognito)
			h.restore(false)

			assert.Equal(t, tt.wantIncognito, h.tabIDs(true))
			assert.Equal(t, []entity.TabID{1}, h.tabIDs(false))
		})
	}
}

func TestStore_SaveAndRestoreRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		deleteBlobs   []int
		wantPayloadOf string
	}{
		{name: "all blobs kept", wantPayloadOf: "state of https://c"},
		{name: "one blob deleted", deleteBlobs: []int{2}},
		{name: "every normal blob deleted", deleteBlobs: []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			h := newHarness(t, dir)
			assert.Equal(t, 0, h.load(false))
			h.restore(false)

			var openErr error
			h.do(func() {
				for _, url := range []string{"https://a", "https://b", "https://c"} {
					tab, err := h.selector.OpenNewTab(ctx, entity.NewLoadURLParams(url), entity.LaunchFromMenu, entity.InvalidTabID, false)
					if err != nil {
						openErr = err
						return
					}
					tab.MarkStateDirty(entity.NewTabState([]byte("state of "+url), false))
				}
				tab, err := h.selector.OpenNewTab(ctx, entity.NewLoadURLParams("https://private"), entity.LaunchFromMenu, entity.InvalidTabID, true)
				if err != nil {
					openErr = err
					return
				}
				tab.MarkStateDirty(entity.NewTabState([]byte("private"), true))
				openErr = h.selector.Model(false).Select(1)
			})
			require.NoError(t, openErr)

			var flushErr error
			h.do(func() { flushErr = h.store.Flush(ctx) })
			require.NoError(t, flushErr)
			h.close()

			meta := readMetadata(t, dir, 0)
			require.NotNil(t, meta)
			require.Len(t, meta.Records, 4)
			assert.True(t, meta.Records[0].IsIncognito(), "incognito records come first")
			assert.Equal(t, entity.TabID(1), meta.SelectedNormalTabID)

			// Incognito tabs without state are dropped on restore, so only normal blobs go.
			blobs := filestore.NewTabStateRepository(dir)
			for _, id := range tt.deleteBlobs {
				require.NoError(t, blobs.Delete(ctx, entity.BlobKey{ID: entity.TabID(id)}))
				require.False(t, blobExists(t, dir, id, false))
			}

			restored := newHarness(t, dir)
			assert.Equal(t, 4, restored.load(false))
			restored.restore(false)
			restored.settle()

			assert.Equal(t, []entity.TabID{0, 1, 2}, restored.tabIDs(false))
			assert.Equal(t, []entity.TabID{3}, restored.tabIDs(true))

			var (
				urls    []string
				current entity.TabID
				payload string
			)
			restored.do(func() {
				for _, incognito := range []bool{false, true} {
					for _, tab := range restored.selector.Model(incognito).Tabs() {
						urls = append(urls, tab.URL)
					}
				}
				current = restored.selector.Model(false).Current().ID
				if state := restored.selector.Model(false).Find(2).State(); state != nil {
					payload = string(state.Payload)
				}
			})
			assert.ElementsMatch(t, []string{"https://a", "https://b", "https://c", "https://private"}, urls)
			assert.Equal(t, entity.TabID(1), current)
			assert.Equal(t, tt.wantPayloadOf, payload)
		})
	}
}

func TestStore_CloseAllWritesOneSnapshot(t *testing.T) {
	for _, allowUndo := range []bool{true, false} {
		h := newHarness(t, t.TempDir())
		h.load(false)
		h.restore(false)

		h.do(func() {
			for _, url := range []string{"https://a", "https://b", "https://c"} {
				_, _ = h.selector.OpenNewTab(context.Background(), entity.NewLoadURLParams(url), entity.LaunchFromMenu, entity.InvalidTabID, false)
			}
		})
		h.settle()
		before := h.metadata.writes.Load()

		h.do(func() { h.selector.Model(false).CloseAll(allowUndo) })
		h.settle()

		assert.Equal(t, before+1, h.metadata.writes.Load(), "allowUndo=%v", allowUndo)
		meta := readMetadata(t, h.dir, 0)
		require.NotNil(t, meta)
		assert.Empty(t, meta.Records, "pending closures are not persisted")
	}
}

func TestStore_UnchangedMetadataIsNotRewritten(t *testing.T) {
	h := newHarness(t, t.TempDir())
	h.load(false)
	h.restore(false)
	h.do(func() {
		_, _ = h.selector.OpenNewTab(context.Background(), entity.NewLoadURLParams("https://a"), entity.LaunchFromMenu, entity.InvalidTabID, false)
	})
	h.settle()

	before := h.metadata.writes.Load()
	var err error
	h.do(func() { err = h.store.Flush(context.Background()) })
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	h.do(func() { err = h.store.Flush(context.Background()) })
	require.NoError(t, err)

	assert.Equal(t, before, h.metadata.writes.Load())
}

func TestStore_SaveDebounceWaitsForQuietPeriod(t *testing.T) {
	h := newHarness(t, t.TempDir(), withConfig(func(cfg *tabstore.Config) {
		cfg.SaveDebounce = 500 * time.Millisecond
	}))
	h.load(false)
	var err error
	h.do(func() { err = h.store.RestoreTabs(context.Background(), false) })
	require.NoError(t, err)
	h.waitReady()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return h.metadata.writes.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	before := h.metadata.writes.Load()

	h.do(func() {
		_, _ = h.selector.OpenNewTab(context.Background(), entity.NewLoadURLParams("https://a"), entity.LaunchFromMenu, entity.InvalidTabID, false)
		_, _ = h.selector.OpenNewTab(context.Background(), entity.NewLoadURLParams("https://b"), entity.LaunchFromMenu, entity.InvalidTabID, false)
	})
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.settle()
	assert.Equal(t, before, h.metadata.writes.Load(), "nothing written before the quiet period")

	h.clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return h.metadata.writes.Load() == before+1 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, readMetadata(t, h.dir, 0).Records, 2)
}

func TestStore_PrefetchedStateIsUsedByRestore(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 3, normalRecord(3, "https://b"))
	writeBlob(t, dir, 3, false, "b-state")
	require.NoError(t, filestore.NewPreferenceRepository(dir).Set(context.Background(), tabstore.LastActiveTabKey(0), "3"))
	hits := testutil.ToFloat64(metrics.PrefetchResults.WithLabelValues(metrics.PrefetchHit))

	h := newHarness(t, dir)
	require.Eventually(t, func() bool { return h.store.CachedStates() == 1 }, 2*time.Second, 5*time.Millisecond)

	h.load(false)
	h.restore(true)

	assert.Equal(t, int32(1), h.blobs.loads.Load(), "restore reused the prefetched read")
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.PrefetchResults.WithLabelValues(metrics.PrefetchHit)))
	assert.Equal(t, 0, h.store.CachedStates())
	assert.Equal(t, []entity.TabID{3}, h.tabIDs(false))
}

func TestStore_MergeState(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"))
	writeMetadata(t, dir, 1, 5, normalRecord(1, "https://dup"), normalRecord(5, "https://c"), normalRecord(6, "https://d"))

	h := newHarness(t, dir)
	h.load(false)
	h.restore(false)

	var err error
	h.do(func() { err = h.store.MergeState(context.Background(), 1) })
	require.NoError(t, err)
	h.waitReady()
	h.settle()

	assert.Equal(t, []entity.TabID{1, 5, 6}, h.tabIDs(false))
	assert.Contains(t, h.eventsSnapshot(), tabstore.StateMerged{Slots: []int{1}, MergedCount: 2})
	assert.Nil(t, readMetadata(t, dir, 1), "merged metadata is deleted")
	var url string
	h.do(func() { url = h.selector.Model(false).Find(1).URL })
	assert.Equal(t, "https://a", url, "first seen record wins")
}

func TestStore_ColdStartMergeSlots(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"))
	writeMetadata(t, dir, 2, 8, normalRecord(8, "https://b"))

	h := newHarness(t, dir, withConfig(func(cfg *tabstore.Config) { cfg.MergeSlots = []int{2} }))
	assert.Equal(t, 2, h.load(false))
	h.restore(false)
	h.settle()

	assert.Equal(t, []entity.TabID{1, 8}, h.tabIDs(false))
	assert.Nil(t, readMetadata(t, dir, 2))
}

func TestStore_SaveDuringRestoreKeepsQueuedRecords(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"), normalRecord(2, "https://b"), normalRecord(3, "https://c"))
	gate := make(chan struct{})
	h := newHarness(t, dir, withGate(gate))
	h.load(false)

	var err error
	h.do(func() { err = h.store.RestoreTabs(context.Background(), false) })
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.blobs.loads.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	h.do(func() { err = h.store.SaveState(context.Background()) })
	require.NoError(t, err)
	require.NoError(t, h.store.WaitForWrites(context.Background()))

	meta := readMetadata(t, dir, 0)
	require.NotNil(t, meta)
	assert.Equal(t, []entity.TabID{1, 2, 3}, meta.IDs())
	assert.Equal(t, entity.TabID(1), meta.SelectedNormalTabID)

	close(gate)
	h.waitReady()
	assert.Equal(t, []entity.TabID{1, 2, 3}, h.tabIDs(false))
}

func TestStore_DestroyDiscardsInFlightRestore(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"), normalRecord(2, "https://b"))
	writeBlob(t, dir, 1, false, "a")
	gate := make(chan struct{})
	h := newHarness(t, dir, withGate(gate))
	h.load(false)

	var err error
	h.do(func() { err = h.store.RestoreTabs(context.Background(), false) })
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.blobs.loads.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	h.do(func() { h.store.Destroy() })
	close(gate)
	h.pool.Wait()

	assert.Empty(t, h.tabIDs(false))
	h.do(func() {
		err = h.store.RestoreTabs(context.Background(), false)
	})
	assert.ErrorIs(t, err, tabstore.ErrDestroyed)
}

func TestStore_ClosingTabDeletesBlob(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"), normalRecord(2, "https://b"))
	writeBlob(t, dir, 1, false, "a")
	writeBlob(t, dir, 2, false, "b")

	h := newHarness(t, dir)
	h.load(false)
	h.restore(false)
	h.settle()

	var err error
	h.do(func() { err = h.selector.CloseTab(1, true) })
	require.NoError(t, err)
	h.settle()
	assert.True(t, blobExists(t, dir, 1, false), "pending closure keeps the blob")

	h.do(func() { err = h.selector.Model(false).CommitClosure(1) })
	require.NoError(t, err)
	h.settle()
	assert.False(t, blobExists(t, dir, 1, false))
	assert.True(t, blobExists(t, dir, 2, false))
}

func TestStore_OrphanedBlobsAreDeletedAfterRestore(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"))
	writeMetadata(t, dir, 3, 8, normalRecord(8, "https://other-window"))
	writeBlob(t, dir, 1, false, "a")
	writeBlob(t, dir, 8, false, "other")
	writeBlob(t, dir, 9, false, "orphan")
	writeBlob(t, dir, 7, true, "orphan")
	deleted := testutil.ToFloat64(metrics.OrphanBlobsDeleted)

	h := newHarness(t, dir)
	h.load(false)
	h.restore(false)
	h.settle()

	assert.True(t, blobExists(t, dir, 1, false))
	assert.True(t, blobExists(t, dir, 8, false), "referenced by another slot")
	assert.False(t, blobExists(t, dir, 9, false))
	assert.False(t, blobExists(t, dir, 7, true))
	assert.Equal(t, deleted+2, testutil.ToFloat64(metrics.OrphanBlobsDeleted))
}

func TestStore_NewTabsSkipIDsOfOrphanedBlobs(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	writeMetadata(t, dir, 0, 0, normalRecord(0, "https://a"))
	writeBlob(t, dir, 0, false, "a")
	writeBlob(t, dir, 1, false, "orphan")

	h := newHarness(t, dir)
	h.load(false)
	assert.Greater(t, h.ids.Peek(), entity.TabID(1), "ids of blobs on disk are reserved")
	h.restore(false)
	h.settle()
	require.False(t, blobExists(t, dir, 1, false))

	var (
		tab *entity.Tab
		err error
	)
	h.do(func() {
		tab, err = h.selector.OpenNewTab(ctx, entity.NewLoadURLParams("https://b"), entity.LaunchFromMenu, entity.InvalidTabID, false)
		if err == nil {
			tab.MarkStateDirty(entity.NewTabState([]byte("b"), false))
		}
	})
	require.NoError(t, err)
	assert.Greater(t, tab.ID, entity.TabID(1))

	h.do(func() { err = h.store.Flush(ctx) })
	require.NoError(t, err)
	h.settle()
	assert.True(t, blobExists(t, dir, int(tab.ID), false))
}

func TestStore_ReaddedTabStateIsWrittenAgain(t *testing.T) {
	h := newHarness(t, t.TempDir())
	ctx := context.Background()
	h.load(false)
	h.restore(false)

	var (
		tab *entity.Tab
		err error
	)
	h.do(func() {
		tab, err = h.selector.OpenNewTab(ctx, entity.NewLoadURLParams("https://a"), entity.LaunchFromMenu, entity.InvalidTabID, false)
		if err == nil {
			err = h.selector.CloseTab(tab.ID, false)
		}
	})
	require.NoError(t, err)
	h.settle()

	readded := entity.NewTab(tab.ID, "https://a", false)
	h.do(func() {
		err = h.selector.AddTab(readded, -1)
		if err == nil {
			readded.MarkStateDirty(entity.NewTabState([]byte("again"), false))
			err = h.store.Flush(ctx)
		}
	})
	require.NoError(t, err)
	h.settle()
	assert.True(t, blobExists(t, h.dir, int(tab.ID), false))
}

func ioDuration(t *testing.T, operation string) (uint64, float64) {
	t.Helper()
	var m dto.Metric
	observer, ok := metrics.IODuration.WithLabelValues(operation).(prometheus.Metric)
	require.True(t, ok)
	require.NoError(t, observer.Write(&m))
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestStore_IODurationFollowsInjectedClock(t *testing.T) {
	h := newHarness(t, t.TempDir())
	ctx := context.Background()
	h.load(false)
	h.restore(false)
	h.settle()

	const step = 250 * time.Millisecond
	advance := func() { h.clock.Advance(step) }
	h.metadata.onWrite.Store(&advance)
	count, sum := ioDuration(t, metrics.OperationMetadataWrite)

	var err error
	h.do(func() {
		_, err = h.selector.OpenNewTab(ctx, entity.NewLoadURLParams("https://a"), entity.LaunchFromMenu, entity.InvalidTabID, false)
		if err == nil {
			err = h.store.Flush(ctx)
		}
	})
	require.NoError(t, err)
	h.settle()
	h.metadata.onWrite.Store(nil)

	gotCount, gotSum := ioDuration(t, metrics.OperationMetadataWrite)
	require.Greater(t, gotCount, count)
	assert.InDelta(t, float64(gotCount-count)*step.Seconds(), gotSum-sum, 1e-9)
}

func TestStore_QueueManipulation(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1,
		incognitoRecord(4, "https://private"),
		normalRecord(1, "https://a"),
		normalRecord(2, "https://b"),
		normalRecord(3, "https://c"),
	)
	writeBlob(t, dir, 4, true, "private")

	h := newHarness(t, dir)
	h.load(false)

	var restoredNow bool
	h.do(func() {
		restoredNow = h.store.RestoreTabStateForID(context.Background(), 3)
		h.store.RemoveTabFromQueues(2)
		h.store.CancelLoadingTabs(true)
	})
	assert.True(t, restoredNow)
	assert.Equal(t, []entity.TabID{3}, h.tabIDs(false))

	h.restore(false)
	assert.Equal(t, []entity.TabID{1, 3}, h.tabIDs(false))
	assert.Empty(t, h.tabIDs(true))

	var count int
	h.do(func() { count = h.store.RestoredTabCount() })
	assert.Equal(t, 2, count)
}

func TestStore_CorruptMetadataFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filestore.MetadataPath(dir, 0), []byte("not json"), 0o600))

	h := newHarness(t, dir)
	assert.Equal(t, 0, h.load(false))
	var state tabstore.State
	h.do(func() { state = h.store.State() })
	assert.Equal(t, tabstore.StateFailed, state)

	h.restore(false)
	assert.Contains(t, h.eventsSnapshot(), tabstore.StateLoaded{RestoredCount: 0})
}

func TestStore_InvalidTransitions(t *testing.T) {
	h := newHarness(t, t.TempDir())
	ctx := context.Background()

	var restoreErr, saveErr, mergeErr error
	h.do(func() {
		restoreErr = h.store.RestoreTabs(ctx, false)
		saveErr = h.store.SaveState(ctx)
		mergeErr = h.store.MergeState(ctx, 1)
	})
	assert.ErrorIs(t, restoreErr, tabstore.ErrInvalidState)
	assert.ErrorIs(t, saveErr, tabstore.ErrInvalidState)
	assert.ErrorIs(t, mergeErr, tabstore.ErrInvalidState)

	h.load(false)
	var err error
	h.do(func() { _, err = h.store.LoadState(ctx, false) })
	assert.ErrorIs(t, err, tabstore.ErrInvalidState)
}

func TestStore_ClearState(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 0, 1, normalRecord(1, "https://a"), normalRecord(2, "https://b"))
	writeBlob(t, dir, 1, false, "a")
	writeBlob(t, dir, 2, false, "b")

	h := newHarness(t, dir)
	h.load(false)
	h.restore(false)
	h.settle()

	var err error
	h.do(func() { err = h.store.ClearState(context.Background()) })
	require.NoError(t, err)
	h.settle()
	assert.Nil(t, readMetadata(t, dir, 0))
	assert.False(t, blobExists(t, dir, 1, false))

	h.do(func() { err = h.store.Flush(context.Background()) })
	require.NoError(t, err)
	assert.True(t, blobExists(t, dir, 1, false), "open tabs are written again")
	assert.Equal(t, []entity.TabID{1, 2}, readMetadata(t, dir, 0).IDs())
}
