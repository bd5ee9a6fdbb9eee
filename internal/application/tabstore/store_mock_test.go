package tabstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	portmocks "github.com/bnema/tabsession/internal/application/port/mocks"
	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository/mocks"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
)

type mockedStore struct {
	metadata *mocks.MockMetadataRepository
	blobs    *mocks.MockTabStateRepository
	prefs    *mocks.MockPreferenceRepository
	codec    *portmocks.MockBlobCodec
	locator  *portmocks.MockTabLocator

	loop  *taskrunner.Loop
	pool  *taskrunner.Pool
	store *tabstore.Store
}

func newMockedStore(t *testing.T, cfg tabstore.Config, expect func(*mockedStore)) *mockedStore {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &mockedStore{
		metadata: mocks.NewMockMetadataRepository(t),
		blobs:    mocks.NewMockTabStateRepository(t),
		prefs:    mocks.NewMockPreferenceRepository(t),
		codec:    portmocks.NewMockBlobCodec(ctrl),
		locator:  portmocks.NewMockTabLocator(ctrl),
		loop:     taskrunner.NewLoop(),
		pool:     taskrunner.NewPool(2),
	}
	expect(m)
	m.blobs.EXPECT().List(mock.Anything).Return(nil, nil).Maybe()

	ids := entity.NewIDAllocator()
	factory := tabmodel.NewDefaultFactory(ids)
	deps := tabstore.Deps{
		Metadata: m.metadata,
		Blobs:    m.blobs,
		Prefs:    m.prefs,
		Codec:    m.codec,
		Factory:  factory,
		Locator:  m.locator,
		IDs:      ids,
		Loop:     m.loop,
		Pool:     m.pool,
	}

	var initErr error
	require.NoError(t, m.loop.Do(context.Background(), func() {
		selector := tabmodel.NewSelector(factory)
		initErr = selector.Initialize(tabmodel.NewCollection(entity.Normal), tabmodel.NewCollection(entity.Incognito))
		m.store = tabstore.New(context.Background(), selector, deps, cfg)
	}))
	require.NoError(t, initErr)

	// Registered after the mocks so the store is gone before expectations are checked.
	t.Cleanup(func() {
		_ = m.loop.Do(context.Background(), func() { m.store.Destroy() })
		m.pool.Wait()
		m.loop.Stop()
	})
	return m
}

func (m *mockedStore) load(t *testing.T) (int, tabstore.State) {
	t.Helper()
	var (
		n     int
		err   error
		state tabstore.State
	)
	require.NoError(t, m.loop.Do(context.Background(), func() {
		n, err = m.store.LoadState(context.Background(), false)
		state = m.store.State()
	}))
	require.NoError(t, err)
	return n, state
}

func encodeRecords(t *testing.T, records ...entity.RestoreRecord) []byte {
	t.Helper()
	meta := entity.EmptyMetadata()
	meta.Records = records
	data, err := entity.EncodeMetadata(meta)
	require.NoError(t, err)
	return data
}

func TestStore_UnreadableMetadataStartsEmptyAndFailed(t *testing.T) {
	m := newMockedStore(t, tabstore.Config{Slot: 0}, func(m *mockedStore) {
		m.prefs.EXPECT().Get(mock.Anything, tabstore.LastActiveTabKey(0)).Return("", false, nil)
		m.metadata.EXPECT().Read(mock.Anything, 0).Return(nil, errors.New("input/output error"))
	})

	n, state := m.load(t)
	assert.Equal(t, 0, n)
	assert.Equal(t, tabstore.StateFailed, state)
}

func TestStore_PrefetchKeepsOnlyDecodableState(t *testing.T) {
	tests := []struct {
		name   string
		decode func(*portmocks.MockBlobCodec)
		cached int
	}{
		{
			name: "sealed by another process",
			decode: func(c *portmocks.MockBlobCodec) {
				c.EXPECT().Decode([]byte("sealed")).Return(nil, errors.New("message authentication failed"))
			},
			cached: 0,
		},
		{
			name: "decodable",
			decode: func(c *portmocks.MockBlobCodec) {
				c.EXPECT().Decode([]byte("sealed")).Return(entity.NewTabState([]byte("history"), false), nil)
			},
			cached: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedStore(t, tabstore.Config{Slot: 1}, func(m *mockedStore) {
				m.prefs.EXPECT().Get(mock.Anything, tabstore.LastActiveTabKey(1)).Return("7", true, nil)
				m.blobs.EXPECT().Load(mock.Anything, entity.BlobKey{ID: 7}).Return([]byte("sealed"), nil)
				m.blobs.EXPECT().Load(mock.Anything, entity.BlobKey{ID: 7, Incognito: true}).Return(nil, nil).Maybe()
				tt.decode(m.codec)
			})

			m.pool.Wait()
			assert.Equal(t, tt.cached, m.store.CachedStates())
		})
	}
}

func TestStore_MergeSkipsTabsLiveElsewhere(t *testing.T) {
	cfg := tabstore.Config{Slot: 0, MergeSlots: []int{0, 1, 2}}
	m := newMockedStore(t, cfg, func(m *mockedStore) {
		m.prefs.EXPECT().Get(mock.Anything, tabstore.LastActiveTabKey(0)).Return("", false, nil)
		m.metadata.EXPECT().Read(mock.Anything, 0).Return(encodeRecords(t, normalRecord(1, "https://own")), nil)
		m.metadata.EXPECT().Read(mock.Anything, 1).Return(encodeRecords(t,
			normalRecord(5, "https://live-elsewhere"),
			normalRecord(6, "https://orphan"),
		), nil)
		m.metadata.EXPECT().Read(mock.Anything, 2).Return(nil, nil)

		m.locator.EXPECT().ContainsTab(entity.TabID(5)).Return(true)
		m.locator.EXPECT().ContainsTab(entity.TabID(6)).Return(false)
	})

	n, state := m.load(t)
	assert.Equal(t, 2, n)
	assert.Equal(t, tabstore.StateRestoring, state)
}
