package tabmodel

import (
	"context"
	"fmt"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/event"
)

// SelectorEvent is emitted by a Selector.
type SelectorEvent interface {
	selectorEvent()
}

// ModelSelected reports a switch of the current collection.
type ModelSelected struct {
	Incognito bool
}

// CollectionChanged forwards an event of one of the selector's collections.
type CollectionChanged struct {
	Visibility entity.Visibility
	Event      Event
}

func (ModelSelected) selectorEvent()     {}
func (CollectionChanged) selectorEvent() {}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLocator makes the selector reject ids that are live in another window.
func WithLocator(l TabLocator) SelectorOption {
	return func(s *Selector) {
		s.locator = l
	}
}

// WithPlacement replaces the default AppendPolicy.
func WithPlacement(p PlacementPolicy) SelectorOption {
	return func(s *Selector) {
		if p != nil {
			s.placement = p
		}
	}
}

// Selector owns the normal and incognito collections of one window and tracks which
// of them is current.
type Selector struct {
	normal    *Collection
	incognito *Collection

	incognitoSelected bool
	initialized       bool

	factory   Factory
	locator   TabLocator
	placement PlacementPolicy

	feed   event.Feed[SelectorEvent]
	unsubs []func()
}

// NewSelector creates an uninitialized selector.
func NewSelector(factory Factory, opts ...SelectorOption) *Selector {
	s := &Selector{
		factory:   factory,
		placement: AppendPolicy{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize attaches exactly one normal and one incognito collection.
func (s *Selector) Initialize(normal, incognito *Collection) error {
	if s.initialized {
		return ErrAlreadyInitialized
	}
	if normal == nil || incognito == nil {
		return fmt.Errorf("initialize selector: %w", ErrMissingCollection)
	}
	if normal.IsIncognito() || !incognito.IsIncognito() {
		return fmt.Errorf("initialize selector: %w", ErrVisibilityMismatch)
	}

	s.normal = normal
	s.incognito = incognito
	s.unsubs = append(s.unsubs,
		normal.Subscribe(s.forward(entity.Normal)),
		incognito.Subscribe(s.forward(entity.Incognito)),
	)
	s.initialized = true
	return nil
}

// IsInitialized reports whether Initialize succeeded.
func (s *Selector) IsInitialized() bool {
	return s.initialized
}

// Destroy detaches the selector from its collections.
func (s *Selector) Destroy() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// Subscribe registers an observer for selector events.
func (s *Selector) Subscribe(fn func(SelectorEvent)) (unsubscribe func()) {
	return s.feed.Subscribe(fn)
}

// SelectModel makes the incognito or the normal collection current.
// Selecting the already current model does nothing.
func (s *Selector) SelectModel(incognito bool) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.incognitoSelected == incognito {
		return nil
	}
	s.incognitoSelected = incognito
	s.feed.Emit(ModelSelected{Incognito: incognito})
	return nil
}

// IsIncognitoSelected reports whether the incognito collection is current.
func (s *Selector) IsIncognitoSelected() bool {
	return s.incognitoSelected
}

// Model returns the collection of the given flavor.
func (s *Selector) Model(incognito bool) *Collection {
	if incognito {
		return s.incognito
	}
	return s.normal
}

// CurrentModel returns the current collection.
func (s *Selector) CurrentModel() *Collection {
	return s.Model(s.incognitoSelected)
}

// CurrentTab returns the current tab of the current collection, or nil.
func (s *Selector) CurrentTab() *entity.Tab {
	if !s.initialized {
		return nil
	}
	return s.CurrentModel().Current()
}

// TabByID returns the live tab with id from either collection, or nil.
func (s *Selector) TabByID(id entity.TabID) *entity.Tab {
	if !s.initialized {
		return nil
	}
	if tab := s.normal.Find(id); tab != nil {
		return tab
	}
	return s.incognito.Find(id)
}

// ModelOf returns the collection holding id as a live or pending tab, or nil.
func (s *Selector) ModelOf(id entity.TabID) *Collection {
	if !s.initialized {
		return nil
	}
	switch {
	case s.normal.Contains(id):
		return s.normal
	case s.incognito.Contains(id):
		return s.incognito
	default:
		return nil
	}
}

// TotalCount returns the number of live tabs in both collections.
func (s *Selector) TotalCount() int {
	if !s.initialized {
		return 0
	}
	return s.normal.Count() + s.incognito.Count()
}

// OpenNewTab asks the factory for a new tab and records it at the position chosen by
// the placement policy. Foreground launches select the tab and its collection.
func (s *Selector) OpenNewTab(
	ctx context.Context,
	params entity.LoadURLParams,
	launch entity.LaunchType,
	parentID entity.TabID,
	incognito bool,
) (*entity.Tab, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if params.ForceID && params.TabID.Valid() {
		if err := s.checkUnique(params.TabID); err != nil {
			return nil, err
		}
	}

	var parent *entity.Tab
	if parentID.Valid() {
		parent = s.TabByID(parentID)
	}

	tab, err := s.factory.CreateTab(ctx, params, launch, parent, incognito)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	if tab == nil {
		return nil, fmt.Errorf("create tab: %w", ErrNilTab)
	}
	if err := s.checkUnique(tab.ID); err != nil {
		return nil, err
	}

	model := s.Model(tab.Incognito)
	if err := model.Add(tab, s.placement.InsertIndex(model, tab, parent)); err != nil {
		return nil, err
	}

	if launch.Foreground() {
		if err := model.Select(model.IndexOf(tab.ID)); err != nil {
			return nil, err
		}
		if err := s.SelectModel(tab.Incognito); err != nil {
			return nil, err
		}
	}
	return tab, nil
}

// AddTab records an already built tab at index in the collection matching its
// visibility. Restore and reparenting use it.
func (s *Selector) AddTab(tab *entity.Tab, index int) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if tab == nil {
		return ErrNilTab
	}
	if err := s.checkUnique(tab.ID); err != nil {
		return err
	}
	return s.Model(tab.Incognito).Add(tab, index)
}

// CloseTab closes id in whichever collection holds it.
func (s *Selector) CloseTab(id entity.TabID, allowUndo bool) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	model := s.ModelOf(id)
	if model == nil {
		return fmt.Errorf("close tab %d: %w", id, ErrTabNotFound)
	}
	return model.Close(id, allowUndo)
}

// DetachTab removes a live tab from this selector without closing it.
func (s *Selector) DetachTab(id entity.TabID) (*entity.Tab, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if tab := s.normal.Find(id); tab != nil {
		return s.normal.Detach(id)
	}
	return s.incognito.Detach(id)
}

func (s *Selector) checkUnique(id entity.TabID) error {
	if s.normal.Contains(id) || s.incognito.Contains(id) {
		return fmt.Errorf("tab %d: %w", id, ErrDuplicateTab)
	}
	if s.locator != nil && s.locator.ContainsTab(id) {
		return fmt.Errorf("tab %d is live in another window: %w", id, ErrDuplicateTab)
	}
	return nil
}

func (s *Selector) forward(v entity.Visibility) func(Event) {
	return func(e Event) {
		s.feed.Emit(CollectionChanged{Visibility: v, Event: e})

		// Never leave an empty incognito model current. Wait until the collection has
		// settled its selection so observers see the fallback last.
		if v.IsIncognito() && s.incognitoSelected && s.incognito.Count() == 0 && s.incognito.Index() == NoSelection {
			s.incognitoSelected = false
			s.feed.Emit(ModelSelected{Incognito: false})
		}
	}
}
