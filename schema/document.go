package schema

import (
	"encoding/json"
)

// KeywordSlotCount is the fixed number of denormalized keyword columns kept
// per document for categorical pre-filtering.
const KeywordSlotCount = 10

// Metadata carries the known document fields plus an open extension map for
// forward-compatible attributes.
type Metadata struct {
	// Source is the origin file path the document was ingested from.
	Source string `json:"source"`
	// Keywords holds ranked keyword phrases, most relevant first.
	Keywords []string `json:"keywords,omitempty"`
	// TopWords summarises the ten most frequent individual words across all
	// keyword phrases, comma separated.
	TopWords string `json:"top_10_keywords,omitempty"`
	// Extra holds any additional attributes (chunk offsets, kind, etc).
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// SetExtra stores an extension attribute, allocating the map on first use.
func (m *Metadata) SetExtra(key string, value interface{}) {
	if m.Extra == nil {
		m.Extra = map[string]interface{}{}
	}
	m.Extra[key] = value
}

// Document represents one retrievable unit: a text chunk, its embedding and
// metadata. Score is populated by similarity search only.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	Score     float64   `json:"score,omitempty"`
}

// KeywordSlots derives the fixed-width slot array from the ranked keywords.
// The result always has exactly KeywordSlotCount entries; unused slots are
// empty strings and keywords beyond the capacity are dropped.
func (d *Document) KeywordSlots() [KeywordSlotCount]string {
	var slots [KeywordSlotCount]string
	for i, kw := range d.Metadata.Keywords {
		if i >= KeywordSlotCount {
			break
		}
		slots[i] = kw
	}
	return slots
}

// EncodeMetadata renders metadata as a JSON document for storage.
func EncodeMetadata(m Metadata) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeMetadata parses a stored metadata JSON document.
func DecodeMetadata(data string) (Metadata, error) {
	var m Metadata
	if data == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return m, err
	}
	return m, nil
}
