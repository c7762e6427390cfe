package ingest

import (
	"github.com/nyp-cnc/ragstore/schema"
)

// Default batching bounds for store insertion.
const (
	DefaultBatchSize        = 20
	DefaultMaxBatchMemoryMB = 50
)

// Batcher groups documents into insertion batches bounded by both a count
// limit and an approximate cumulative memory limit.
type Batcher struct {
	maxCount int
	maxBytes int
}

// NewBatcher creates a batcher with the given bounds; non-positive values
// fall back to the defaults.
func NewBatcher(maxCount, maxMemoryMB int) *Batcher {
	if maxCount <= 0 {
		maxCount = DefaultBatchSize
	}
	if maxMemoryMB <= 0 {
		maxMemoryMB = DefaultMaxBatchMemoryMB
	}
	return &Batcher{maxCount: maxCount, maxBytes: maxMemoryMB * 1024 * 1024}
}

// Batches partitions docs preserving order. A batch is closed whenever the
// next document would exceed either bound, except that the first document of
// a batch is always admitted even when it alone exceeds the memory bound, so
// a batch is never empty and an oversize document is never dropped.
func (b *Batcher) Batches(docs []schema.Document) [][]schema.Document {
	if len(docs) == 0 {
		return nil
	}
	var batches [][]schema.Document
	var current []schema.Document
	currentBytes := 0
	for _, doc := range docs {
		size := estimateSize(&doc)
		if len(current) > 0 && (len(current) >= b.maxCount || currentBytes+size > b.maxBytes) {
			batches = append(batches, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, doc)
		currentBytes += size
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// estimateSize approximates the in-memory footprint of a document from its
// content and metadata byte sizes.
func estimateSize(doc *schema.Document) int {
	size := len(doc.Content) + len(doc.ID) + len(doc.Metadata.Source) + len(doc.Metadata.TopWords)
	for _, kw := range doc.Metadata.Keywords {
		size += len(kw)
	}
	for k, v := range doc.Metadata.Extra {
		size += len(k)
		if s, ok := v.(string); ok {
			size += len(s)
		} else {
			size += 8
		}
	}
	return size
}
