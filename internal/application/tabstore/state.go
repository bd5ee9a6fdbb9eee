package tabstore

import "errors"

// State is the lifecycle phase of a Store.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateRestoring
	StateFailed
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateRestoring:
		return "restoring"
	case StateFailed:
		return "failed"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidState is returned when an operation is not allowed in the current phase.
	ErrInvalidState = errors.New("operation not allowed in current store state")
	// ErrDestroyed is returned by operations on a destroyed store.
	ErrDestroyed = errors.New("tab store destroyed")
)
