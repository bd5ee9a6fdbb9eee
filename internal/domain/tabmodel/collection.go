// Package tabmodel holds the in-memory tab collections of a window and the selector
// that switches between the normal and incognito collection.
//
// Collections are not safe for concurrent use. All mutation for one window happens on
// that window's control loop.
package tabmodel

import (
	"fmt"
	"slices"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/event"
)

// NoSelection is the current index of an empty collection.
const NoSelection = -1

// PendingClosure is a closed tab that can still be brought back.
type PendingClosure struct {
	Tab           *entity.Tab
	OriginalIndex int
	WasSelected   bool
}

// Collection is an ordered list of tabs of one visibility.
type Collection struct {
	visibility entity.Visibility

	tabs  []*entity.Tab
	index int

	// rewound keeps live and pending tabs in their relative order so an undone tab
	// goes back between the same neighbors it was closed from.
	rewound []*entity.Tab
	pending map[entity.TabID]*PendingClosure
	// pendingOrder keeps PendingClosures deterministic.
	pendingOrder []entity.TabID

	feed event.Feed[Event]
}

// NewCollection creates an empty collection.
func NewCollection(visibility entity.Visibility) *Collection {
	return &Collection{
		visibility: visibility,
		index:      NoSelection,
		pending:    make(map[entity.TabID]*PendingClosure),
	}
}

// Visibility returns the flavor of tabs this collection holds.
func (c *Collection) Visibility() entity.Visibility {
	return c.visibility
}

// IsIncognito reports whether the collection holds incognito tabs.
func (c *Collection) IsIncognito() bool {
	return c.visibility.IsIncognito()
}

// Subscribe registers an observer for mutation events.
func (c *Collection) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.feed.Subscribe(fn)
}

// Count returns the number of live tabs.
func (c *Collection) Count() int {
	return len(c.tabs)
}

// Index returns the current index, or NoSelection.
func (c *Collection) Index() int {
	return c.index
}

// TabAt returns the live tab at i, or nil.
func (c *Collection) TabAt(i int) *entity.Tab {
	if i < 0 || i >= len(c.tabs) {
		return nil
	}
	return c.tabs[i]
}

// Current returns the selected tab, or nil.
func (c *Collection) Current() *entity.Tab {
	return c.TabAt(c.index)
}

// IndexOf returns the live position of id, or -1.
func (c *Collection) IndexOf(id entity.TabID) int {
	for i, t := range c.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the live tab with id, or nil.
func (c *Collection) Find(id entity.TabID) *entity.Tab {
	return c.TabAt(c.IndexOf(id))
}

// Tabs returns a copy of the live tabs in order.
func (c *Collection) Tabs() []*entity.Tab {
	return slices.Clone(c.tabs)
}

// IsPendingClosure reports whether id was closed and can still be undone.
func (c *Collection) IsPendingClosure(id entity.TabID) bool {
	_, ok := c.pending[id]
	return ok
}

// PendingClosures returns the pending closures in the order they were closed.
func (c *Collection) PendingClosures() []PendingClosure {
	out := make([]PendingClosure, 0, len(c.pendingOrder))
	for _, id := range c.pendingOrder {
		out = append(out, *c.pending[id])
	}
	return out
}

// Contains reports whether id is live or pending in this collection.
func (c *Collection) Contains(id entity.TabID) bool {
	return c.IndexOf(id) >= 0 || c.IsPendingClosure(id)
}

// Add inserts tab at index. Negative or too large indices append. The first tab added
// to an empty collection becomes the current tab.
func (c *Collection) Add(tab *entity.Tab, index int) error {
	if tab == nil {
		return ErrNilTab
	}
	if tab.Visibility() != c.visibility {
		return fmt.Errorf("add tab %d to %s collection: %w", tab.ID, c.visibility, ErrVisibilityMismatch)
	}
	if c.Contains(tab.ID) {
		return fmt.Errorf("add tab %d: %w", tab.ID, ErrDuplicateTab)
	}

	if index < 0 || index > len(c.tabs) {
		index = len(c.tabs)
	}
	c.insertLive(tab, index)
	// Observers of TabAdded must see the selection already shifted past the insert.
	if c.index != NoSelection && index <= c.index {
		c.index++
	}

	c.feed.Emit(TabAdded{Tab: tab, Index: index})

	if c.index == NoSelection {
		c.setIndex(index)
	}
	return nil
}

// Close removes a live tab. With allowUndo the tab is kept as a pending closure;
// closing an already pending tab without undo makes the closure final.
func (c *Collection) Close(id entity.TabID, allowUndo bool) error {
	if p, ok := c.pending[id]; ok {
		if allowUndo {
			return nil
		}
		c.commit(p.Tab)
		return nil
	}

	pos := c.IndexOf(id)
	if pos < 0 {
		return fmt.Errorf("close tab %d: %w", id, ErrTabNotFound)
	}

	tab := c.tabs[pos]
	wasSelected := pos == c.index
	c.tabs = slices.Delete(c.tabs, pos, pos+1)
	c.shiftForRemoval(pos, wasSelected)

	if allowUndo {
		c.pending[id] = &PendingClosure{Tab: tab, OriginalIndex: pos, WasSelected: wasSelected}
		c.pendingOrder = append(c.pendingOrder, id)
		c.feed.Emit(TabPendingClosure{Tab: tab, OriginalIndex: pos})
	} else {
		c.removeRewound(id)
		c.feed.Emit(TabClosed{Tab: tab})
	}

	c.afterRemoval(tab, pos, wasSelected)
	return nil
}

// UndoClose reinserts a pending closure at its original position among the tabs that
// are still around.
func (c *Collection) UndoClose(id entity.TabID) error {
	p, ok := c.pending[id]
	if !ok {
		return fmt.Errorf("undo close of tab %d: %w", id, ErrTabNotFound)
	}
	c.dropPending(id)

	pos := 0
	for _, t := range c.rewound {
		if t.ID == id {
			break
		}
		if c.IndexOf(t.ID) >= 0 {
			pos++
		}
	}
	c.tabs = slices.Insert(c.tabs, pos, p.Tab)
	if c.index != NoSelection && pos <= c.index {
		c.index++
	}

	c.feed.Emit(TabClosureUndone{Tab: p.Tab, Index: pos})

	if c.index == NoSelection || p.WasSelected {
		c.setIndex(pos)
	}
	return nil
}

// CommitClosure makes a pending closure final.
func (c *Collection) CommitClosure(id entity.TabID) error {
	p, ok := c.pending[id]
	if !ok {
		return fmt.Errorf("commit closure of tab %d: %w", id, ErrTabNotFound)
	}
	c.commit(p.Tab)
	return nil
}

// CommitAllClosures makes every pending closure final.
func (c *Collection) CommitAllClosures() {
	for _, id := range slices.Clone(c.pendingOrder) {
		c.commit(c.pending[id].Tab)
	}
}

// Select makes the tab at index current. On an empty collection the selection is
// forced to NoSelection.
func (c *Collection) Select(index int) error {
	if len(c.tabs) == 0 {
		c.index = NoSelection
		return nil
	}
	if index < 0 || index >= len(c.tabs) {
		return fmt.Errorf("select %d of %d: %w", index, len(c.tabs), ErrIndexOutOfRange)
	}
	c.setIndex(index)
	return nil
}

// CloseAll closes every live tab in a single batch. Observers see one event.
func (c *Collection) CloseAll(allowUndo bool) {
	if len(c.tabs) == 0 && (allowUndo || len(c.pending) == 0) {
		return
	}

	closed := c.tabs
	selected := c.index
	c.tabs = nil
	c.index = NoSelection

	if allowUndo {
		for i, tab := range closed {
			c.pending[tab.ID] = &PendingClosure{Tab: tab, OriginalIndex: i, WasSelected: i == selected}
			c.pendingOrder = append(c.pendingOrder, tab.ID)
		}
		c.feed.Emit(MultipleTabsPendingClosure{Tabs: slices.Clone(closed)})
		return
	}

	all := slices.Clone(closed)
	for _, id := range c.pendingOrder {
		all = append(all, c.pending[id].Tab)
	}
	c.pending = make(map[entity.TabID]*PendingClosure)
	c.pendingOrder = nil
	c.rewound = nil
	c.feed.Emit(AllTabsClosed{Tabs: all})
}

// Move repositions a live tab.
func (c *Collection) Move(id entity.TabID, newIndex int) error {
	from := c.IndexOf(id)
	if from < 0 {
		return fmt.Errorf("move tab %d: %w", id, ErrTabNotFound)
	}
	if newIndex < 0 || newIndex >= len(c.tabs) {
		return fmt.Errorf("move tab %d to %d: %w", id, newIndex, ErrIndexOutOfRange)
	}
	if from == newIndex {
		return nil
	}

	tab := c.tabs[from]
	current := c.Current()

	c.tabs = slices.Delete(c.tabs, from, from+1)
	c.removeRewound(id)
	c.insertLive(tab, newIndex)

	if current != nil {
		c.index = c.IndexOf(current.ID)
	}
	c.feed.Emit(TabMoved{Tab: tab, From: from, To: newIndex})
	return nil
}

// Detach removes a live tab without closing it. The tab's persisted state is left alone.
func (c *Collection) Detach(id entity.TabID) (*entity.Tab, error) {
	pos := c.IndexOf(id)
	if pos < 0 {
		return nil, fmt.Errorf("detach tab %d: %w", id, ErrTabNotFound)
	}

	tab := c.tabs[pos]
	wasSelected := pos == c.index
	c.tabs = slices.Delete(c.tabs, pos, pos+1)
	c.removeRewound(id)
	c.shiftForRemoval(pos, wasSelected)

	c.feed.Emit(TabDetached{Tab: tab, Index: pos})
	c.afterRemoval(tab, pos, wasSelected)
	return tab, nil
}

func (c *Collection) insertLive(tab *entity.Tab, index int) {
	c.tabs = slices.Insert(c.tabs, index, tab)

	// Keep the rewound order: place the tab right before its new live successor.
	if index+1 < len(c.tabs) {
		next := c.tabs[index+1].ID
		for i, t := range c.rewound {
			if t.ID == next {
				c.rewound = slices.Insert(c.rewound, i, tab)
				return
			}
		}
	}
	c.rewound = append(c.rewound, tab)
}

func (c *Collection) removeRewound(id entity.TabID) {
	c.rewound = slices.DeleteFunc(c.rewound, func(t *entity.Tab) bool { return t.ID == id })
}

func (c *Collection) dropPending(id entity.TabID) {
	delete(c.pending, id)
	c.pendingOrder = slices.DeleteFunc(c.pendingOrder, func(p entity.TabID) bool { return p == id })
}

func (c *Collection) commit(tab *entity.Tab) {
	c.dropPending(tab.ID)
	c.removeRewound(tab.ID)
	c.feed.Emit(TabClosed{Tab: tab})
}

// shiftForRemoval keeps the current tab selected when a tab before it leaves.
func (c *Collection) shiftForRemoval(pos int, wasSelected bool) {
	if !wasSelected && pos < c.index {
		c.index--
	}
}

// afterRemoval picks a new selection when the removed tab was the current one.
func (c *Collection) afterRemoval(removed *entity.Tab, pos int, wasSelected bool) {
	switch {
	case len(c.tabs) == 0:
		c.index = NoSelection
		if wasSelected {
			c.feed.Emit(TabSelected{Tab: nil, Index: NoSelection, PreviousID: removed.ID})
		}
	case wasSelected:
		c.index = min(pos, len(c.tabs)-1)
		c.feed.Emit(TabSelected{Tab: c.tabs[c.index], Index: c.index, PreviousID: removed.ID})
	}
}

func (c *Collection) setIndex(index int) {
	previous := entity.InvalidTabID
	if cur := c.Current(); cur != nil {
		previous = cur.ID
	}
	c.index = index
	c.feed.Emit(TabSelected{Tab: c.tabs[index], Index: index, PreviousID: previous})
}
