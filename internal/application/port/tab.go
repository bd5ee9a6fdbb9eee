package port

import (
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/tabmodel"
)

//go:generate mockgen -source=tab.go -destination=mocks/mock_tab.go -package=mocks

// TabFactory builds tab handles for the selector. The navigation layer implements it.
type TabFactory = tabmodel.Factory

// TabLocator answers process-wide "is this tab live" queries.
// The window manager implements it.
type TabLocator = tabmodel.TabLocator

// BlobCodec turns tab state into the bytes stored by a TabStateRepository.
type BlobCodec interface {
	// Encode serializes state. Incognito state may be sealed.
	Encode(state *entity.TabState) ([]byte, error)

	// Decode reverses Encode. It fails for blobs that cannot be opened anymore,
	// such as incognito blobs sealed by a previous process.
	Decode(data []byte) (*entity.TabState, error)
}
