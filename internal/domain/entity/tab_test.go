package entity_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/tabsession/internal/domain/entity"
)

func TestIDAllocator_NextIsUniqueUnderConcurrency(t *testing.T) {
	alloc := entity.NewIDAllocator()

	const workers = 8
	const perWorker = 100
	var mu sync.Mutex
	seen := make(map[entity.TabID]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := alloc.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestIDAllocator_EnsureAbove(t *testing.T) {
	alloc := entity.NewIDAllocator()
	alloc.EnsureAbove(41)
	assert.Equal(t, entity.TabID(42), alloc.Next())

	alloc.EnsureAbove(10)
	assert.Equal(t, entity.TabID(43), alloc.Next())
}

func TestTab_DirtyTracking(t *testing.T) {
	tab := entity.NewTab(1, "https://example.com", false)
	assert.False(t, tab.IsStateDirty())

	first := entity.NewTabState([]byte("one"), false)
	tab.MarkStateDirty(first)
	assert.True(t, tab.IsStateDirty())

	second := entity.NewTabState([]byte("two"), false)
	tab.MarkStateDirty(second)

	tab.ClearStateDirty(first)
	assert.True(t, tab.IsStateDirty(), "a stale save must not clear newer changes")

	tab.ClearStateDirty(second)
	assert.False(t, tab.IsStateDirty())
}

func TestNewFrozenTab_TakesVisibilityFromState(t *testing.T) {
	tab := entity.NewFrozenTab(5, "https://p", entity.NewTabState(nil, true))
	assert.True(t, tab.Incognito)
	assert.Equal(t, entity.LaunchFromRestore, tab.LaunchType)
	assert.False(t, tab.IsStateDirty())
}
