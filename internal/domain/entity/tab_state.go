package entity

import "time"

// TabState is the full serialized state of one tab: navigation history and render
// snapshot. Payload is opaque to the persistence layer.
type TabState struct {
	Incognito bool
	Payload   []byte
	Timestamp time.Time
}

// NewTabState wraps a payload.
func NewTabState(payload []byte, incognito bool) *TabState {
	return &TabState{
		Incognito: incognito,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// LoadURLParams describes a tab to open from a bare URL. The zero value lets the
// factory allocate the id.
type LoadURLParams struct {
	URL string
	// TabID is the id to create the tab with. It is only used when ForceID is set.
	TabID   TabID
	ForceID bool
}

// NewLoadURLParams returns params with an unassigned tab id.
func NewLoadURLParams(url string) LoadURLParams {
	return LoadURLParams{URL: url, TabID: InvalidTabID}
}

// NewLoadURLParamsWithID returns params that create the tab with id.
func NewLoadURLParamsWithID(url string, id TabID) LoadURLParams {
	return LoadURLParams{URL: url, TabID: id, ForceID: true}
}

// BlobKey names one persisted tab state. Normal and incognito blobs live apart.
type BlobKey struct {
	ID        TabID
	Incognito bool
}
