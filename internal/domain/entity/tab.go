package entity

import (
	"strconv"
	"sync/atomic"
	"time"
)

// TabID uniquely identifies a tab within the process.
type TabID int

// InvalidTabID marks the absence of a tab.
const InvalidTabID TabID = -1

// String implements fmt.Stringer.
func (id TabID) String() string {
	return strconv.Itoa(int(id))
}

// Valid reports whether the id can reference a tab.
func (id TabID) Valid() bool {
	return id >= 0
}

// Visibility separates regular browsing from incognito browsing.
type Visibility int

const (
	Normal Visibility = iota
	Incognito
)

// VisibilityOf maps the incognito flag to a Visibility.
func VisibilityOf(incognito bool) Visibility {
	if incognito {
		return Incognito
	}
	return Normal
}

// IsIncognito reports whether v is the incognito visibility.
func (v Visibility) IsIncognito() bool {
	return v == Incognito
}

func (v Visibility) String() string {
	if v == Incognito {
		return "incognito"
	}
	return "normal"
}

// LaunchType records why a tab was opened. Placement policies use it to decide where
// a new tab goes.
type LaunchType int

const (
	LaunchFromLink LaunchType = iota
	LaunchFromExternalApp
	LaunchFromMenu
	LaunchFromRestore
	LaunchFromLongPressBackground
	LaunchFromReparenting
)

// Foreground reports whether a tab launched this way should become the selected tab.
func (l LaunchType) Foreground() bool {
	switch l {
	case LaunchFromRestore, LaunchFromLongPressBackground, LaunchFromReparenting:
		return false
	default:
		return true
	}
}

func (l LaunchType) String() string {
	switch l {
	case LaunchFromLink:
		return "link"
	case LaunchFromExternalApp:
		return "external_app"
	case LaunchFromMenu:
		return "menu"
	case LaunchFromRestore:
		return "restore"
	case LaunchFromLongPressBackground:
		return "long_press_background"
	case LaunchFromReparenting:
		return "reparenting"
	default:
		return "unknown"
	}
}

// Tab is the handle the persistence layer tracks. The State blob belongs to whoever
// created the tab; this package only carries it around.
type Tab struct {
	ID         TabID
	Incognito  bool
	URL        string
	ParentID   TabID
	LaunchType LaunchType
	CreatedAt  time.Time

	state atomic.Pointer[TabState]
	dirty atomic.Bool
}

// NewTab creates a tab handle without state.
func NewTab(id TabID, url string, incognito bool) *Tab {
	return &Tab{
		ID:        id,
		URL:       url,
		Incognito: incognito,
		ParentID:  InvalidTabID,
		CreatedAt: time.Now(),
	}
}

// NewFrozenTab creates a tab handle from a previously persisted state.
// The restored state is already on disk, so the tab starts clean.
func NewFrozenTab(id TabID, url string, state *TabState) *Tab {
	tab := NewTab(id, url, state != nil && state.Incognito)
	tab.LaunchType = LaunchFromRestore
	tab.state.Store(state)
	return tab
}

// Visibility returns the collection flavor this tab belongs to.
func (t *Tab) Visibility() Visibility {
	return VisibilityOf(t.Incognito)
}

// State returns the latest state blob, or nil when the tab has none.
func (t *Tab) State() *TabState {
	return t.state.Load()
}

// MarkStateDirty replaces the state blob and flags the tab for saving.
func (t *Tab) MarkStateDirty(state *TabState) {
	t.state.Store(state)
	t.dirty.Store(true)
}

// IsStateDirty reports whether the state changed since the last successful save.
func (t *Tab) IsStateDirty() bool {
	return t.dirty.Load()
}

// ClearStateDirty is called once the given state has been written. It is a no-op when
// the state changed again in the meantime.
func (t *Tab) ClearStateDirty(saved *TabState) {
	if t.state.Load() == saved {
		t.dirty.Store(false)
	}
}

// IDAllocator hands out process-unique tab ids.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator creates an allocator starting at zero.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() TabID {
	return TabID(a.next.Add(1) - 1)
}

// EnsureAbove makes sure future ids are strictly greater than id.
func (a *IDAllocator) EnsureAbove(id TabID) {
	want := int64(id) + 1
	for {
		cur := a.next.Load()
		if cur >= want {
			return
		}
		if a.next.CompareAndSwap(cur, want) {
			return
		}
	}
}

// Peek returns the id Next would hand out.
func (a *IDAllocator) Peek() TabID {
	return TabID(a.next.Load())
}
