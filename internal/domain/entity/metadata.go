package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MetadataVersion is the current schema version of the metadata file.
// Readers accept newer versions and ignore fields they do not know.
const MetadataVersion = 1

// ErrCorruptMetadata is returned when a metadata file cannot be decoded.
var ErrCorruptMetadata = errors.New("corrupt tab metadata")

// RestoreRecord describes one persisted tab.
type RestoreRecord struct {
	// Index is the position of the record across the whole file (incognito tabs first).
	Index                  int    `json:"index" jsonschema:"minimum=0"`
	ID                     TabID  `json:"id"`
	URL                    string `json:"url"`
	IsNormalActiveIndex    bool   `json:"is_normal_active_index,omitempty"`
	IsIncognitoActiveIndex bool   `json:"is_incognito_active_index,omitempty"`
	// Incognito is nil when the writer did not know how many incognito tabs it had.
	Incognito *bool `json:"incognito,omitempty"`

	// FromMerge is set in memory for records read from another window's metadata.
	FromMerge bool `json:"-"`
}

// IncognitoKnown reports whether the record's visibility was recorded.
func (r RestoreRecord) IncognitoKnown() bool {
	return r.Incognito != nil
}

// IsIncognito returns the recorded visibility, treating unknown as normal.
func (r RestoreRecord) IsIncognito() bool {
	return r.Incognito != nil && *r.Incognito
}

// Metadata is the ordered description of one window's tabs.
type Metadata struct {
	Version                int             `json:"version"`
	Records                []RestoreRecord `json:"records"`
	SelectedNormalTabID    TabID           `json:"selected_normal_tab_id"`
	SelectedIncognitoTabID TabID           `json:"selected_incognito_tab_id"`
	SavedAt                time.Time       `json:"saved_at"`
}

// EmptyMetadata returns metadata describing a blank window.
func EmptyMetadata() *Metadata {
	return &Metadata{
		Version:                MetadataVersion,
		Records:                []RestoreRecord{},
		SelectedNormalTabID:    InvalidTabID,
		SelectedIncognitoTabID: InvalidTabID,
	}
}

// TabCount returns the number of records.
func (m *Metadata) TabCount() int {
	if m == nil {
		return 0
	}
	return len(m.Records)
}

// IncognitoCount returns the number of records known to be incognito.
func (m *Metadata) IncognitoCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, r := range m.Records {
		if r.IsIncognito() {
			n++
		}
	}
	return n
}

// MaxTabID returns the largest id referenced, or InvalidTabID for empty metadata.
func (m *Metadata) MaxTabID() TabID {
	maxID := InvalidTabID
	if m == nil {
		return maxID
	}
	for _, r := range m.Records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID
}

// IDs returns the record ids in order.
func (m *Metadata) IDs() []TabID {
	if m == nil {
		return nil
	}
	ids := make([]TabID, 0, len(m.Records))
	for _, r := range m.Records {
		ids = append(ids, r.ID)
	}
	return ids
}

// EncodeMetadata serializes metadata for the metadata file.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	if m == nil {
		return nil, errors.New("metadata cannot be nil")
	}
	return json.Marshal(m)
}

// DecodeMetadata parses a metadata file. Unknown fields are ignored; structurally
// invalid content yields ErrCorruptMetadata.
func DecodeMetadata(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptMetadata)
	}

	m := EmptyMetadata()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMetadata, err)
	}
	if m.Version <= 0 {
		return nil, fmt.Errorf("%w: missing version", ErrCorruptMetadata)
	}
	if m.Records == nil {
		m.Records = []RestoreRecord{}
	}

	normalActive, incognitoActive := 0, 0
	for i := range m.Records {
		r := &m.Records[i]
		if !r.ID.Valid() {
			return nil, fmt.Errorf("%w: record %d has invalid id %d", ErrCorruptMetadata, i, r.ID)
		}
		r.Index = i
		if r.IsNormalActiveIndex {
			normalActive++
		}
		if r.IsIncognitoActiveIndex {
			incognitoActive++
		}
	}
	if normalActive > 1 || incognitoActive > 1 {
		return nil, fmt.Errorf("%w: multiple active records", ErrCorruptMetadata)
	}

	return m, nil
}

// BoolPtr is a small helper for RestoreRecord.Incognito.
func BoolPtr(v bool) *bool {
	return &v
}
