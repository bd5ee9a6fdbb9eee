package tabmodel

import "github.com/bnema/tabsession/internal/domain/entity"

// PlacementPolicy decides where a newly opened tab is inserted.
type PlacementPolicy interface {
	// InsertIndex returns the position of tab in c. parent may be nil.
	InsertIndex(c *Collection, tab *entity.Tab, parent *entity.Tab) int
}

// AppendPolicy always places new tabs at the end.
type AppendPolicy struct{}

// InsertIndex implements PlacementPolicy.
func (AppendPolicy) InsertIndex(c *Collection, _ *entity.Tab, _ *entity.Tab) int {
	return c.Count()
}

// AfterParentPolicy groups tabs opened from a link next to the tab that opened them.
// The new tab goes after the parent and the children the parent already opened.
// Other launch types append.
type AfterParentPolicy struct{}

// InsertIndex implements PlacementPolicy.
func (AfterParentPolicy) InsertIndex(c *Collection, tab *entity.Tab, parent *entity.Tab) int {
	if parent == nil {
		return c.Count()
	}
	switch tab.LaunchType {
	case entity.LaunchFromLink, entity.LaunchFromLongPressBackground:
	default:
		return c.Count()
	}

	pos := c.IndexOf(parent.ID)
	if pos < 0 {
		return c.Count()
	}
	pos++
	for pos < c.Count() && c.TabAt(pos).ParentID == parent.ID {
		pos++
	}
	return pos
}
