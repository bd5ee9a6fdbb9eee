package tabstore

import "github.com/bnema/tabsession/internal/domain/entity"

// Event is delivered to store observers on the window's control loop.
type Event interface {
	storeEvent()
}

// Initialized is emitted by LoadState once the metadata has been read.
type Initialized struct {
	TabCountAtStartup int
}

// DetailsRead is emitted once per record, in persisted order, right after Initialized.
type DetailsRead struct {
	Record entity.RestoreRecord
}

// StateLoaded is emitted when the initial restore finished.
type StateLoaded struct {
	RestoredCount int
}

// StateMerged is emitted when the records of other slots were restored into this window.
type StateMerged struct {
	Slots       []int
	MergedCount int
}

// MetadataSaved is emitted after a metadata snapshot reached the repository.
type MetadataSaved struct {
	Metadata *entity.Metadata
}

func (Initialized) storeEvent()   {}
func (DetailsRead) storeEvent()   {}
func (StateLoaded) storeEvent()   {}
func (StateMerged) storeEvent()   {}
func (MetadataSaved) storeEvent() {}
