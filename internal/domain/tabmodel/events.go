package tabmodel

import "github.com/bnema/tabsession/internal/domain/entity"

// Event is emitted by a Collection after each mutation.
type Event interface {
	collectionEvent()
}

// TabAdded reports a tab inserted at Index.
type TabAdded struct {
	Tab   *entity.Tab
	Index int
}

// TabSelected reports a new current tab. Tab is nil when the selection was cleared.
type TabSelected struct {
	Tab        *entity.Tab
	Index      int
	PreviousID entity.TabID
}

// TabMoved reports a reorder.
type TabMoved struct {
	Tab  *entity.Tab
	From int
	To   int
}

// TabPendingClosure reports a tab closed with undo still possible.
type TabPendingClosure struct {
	Tab           *entity.Tab
	OriginalIndex int
}

// MultipleTabsPendingClosure reports a CloseAll batch that can still be undone.
type MultipleTabsPendingClosure struct {
	Tabs []*entity.Tab
}

// TabClosureUndone reports a pending closure reverted; the tab is back at Index.
type TabClosureUndone struct {
	Tab   *entity.Tab
	Index int
}

// TabClosed reports a closure that can no longer be undone.
type TabClosed struct {
	Tab *entity.Tab
}

// AllTabsClosed reports a non-undoable CloseAll, including previously pending tabs.
type AllTabsClosed struct {
	Tabs []*entity.Tab
}

// TabDetached reports a tab removed without closing it, e.g. to move it to another window.
type TabDetached struct {
	Tab   *entity.Tab
	Index int
}

func (TabAdded) collectionEvent()                   {}
func (TabSelected) collectionEvent()                {}
func (TabMoved) collectionEvent()                   {}
func (TabPendingClosure) collectionEvent()          {}
func (MultipleTabsPendingClosure) collectionEvent() {}
func (TabClosureUndone) collectionEvent()           {}
func (TabClosed) collectionEvent()                  {}
func (AllTabsClosed) collectionEvent()              {}
func (TabDetached) collectionEvent()                {}

// IsStructural reports whether e changes which tabs exist or their order, as opposed
// to a pure selection change.
func IsStructural(e Event) bool {
	_, selection := e.(TabSelected)
	return !selection
}
