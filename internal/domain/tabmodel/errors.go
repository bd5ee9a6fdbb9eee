package tabmodel

import "errors"

var (
	// ErrDuplicateTab is returned when a tab id is already tracked somewhere.
	ErrDuplicateTab = errors.New("tab id already present")
	// ErrTabNotFound is returned when an operation names an unknown tab.
	ErrTabNotFound = errors.New("tab not found")
	// ErrIndexOutOfRange is returned by Select and Move for indices outside [0, count).
	ErrIndexOutOfRange = errors.New("tab index out of range")
	// ErrVisibilityMismatch is returned when a tab is added to the wrong flavor of collection.
	ErrVisibilityMismatch = errors.New("tab visibility does not match collection")
	// ErrNotInitialized is returned by selector mutators called before Initialize.
	ErrNotInitialized = errors.New("tab selector not initialized")
	// ErrNilTab is returned when a nil tab handle is passed in.
	ErrNilTab = errors.New("tab cannot be nil")
	// ErrAlreadyInitialized is returned by a second call to Selector.Initialize.
	ErrAlreadyInitialized = errors.New("tab selector already initialized")
	// ErrMissingCollection is returned by Selector.Initialize when a collection is nil.
	ErrMissingCollection = errors.New("both collections are required")
	// ErrInvalidTabID is returned when a forced tab id is negative.
	ErrInvalidTabID = errors.New("invalid tab id")
)
