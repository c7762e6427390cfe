package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nyp-cnc/ragstore/schema"
)

func makeDocs(n, contentLen int) []schema.Document {
	docs := make([]schema.Document, n)
	for i := range docs {
		docs[i] = schema.Document{
			ID:      fmt.Sprintf("doc-%d", i),
			Content: strings.Repeat("x", contentLen),
		}
	}
	return docs
}

func TestBatcher_CountBound(t *testing.T) {
	batcher := NewBatcher(20, 50)
	docs := makeDocs(105, 10)

	batches := batcher.Batches(docs)

	total := 0
	for _, batch := range batches {
		if len(batch) == 0 {
			t.Fatal("empty batch yielded")
		}
		if len(batch) > 20 {
			t.Fatalf("batch of %d exceeds count bound", len(batch))
		}
		total += len(batch)
	}
	if total != 105 {
		t.Fatalf("expected 105 documents across batches, got %d", total)
	}
	if len(batches) != 6 {
		t.Fatalf("expected 6 batches, got %d", len(batches))
	}
}

func TestBatcher_MemoryBound(t *testing.T) {
	// 1MB memory bound, ~600KB documents: two per batch would exceed it.
	batcher := NewBatcher(20, 1)
	docs := makeDocs(4, 600*1024)

	batches := batcher.Batches(docs)
	if len(batches) != 4 {
		t.Fatalf("expected one document per batch, got %d batches", len(batches))
	}
}

func TestBatcher_OversizeDocumentAdmittedAlone(t *testing.T) {
	batcher := NewBatcher(20, 1)
	docs := makeDocs(1, 5*1024*1024) // alone exceeds the 1MB bound

	batches := batcher.Batches(docs)
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("oversize document must be yielded alone, got %d batches", len(batches))
	}
}

func TestBatcher_PreservesOrder(t *testing.T) {
	batcher := NewBatcher(3, 50)
	docs := makeDocs(7, 10)

	var flat []schema.Document
	for _, batch := range batcher.Batches(docs) {
		flat = append(flat, batch...)
	}
	for i := range flat {
		if flat[i].ID != fmt.Sprintf("doc-%d", i) {
			t.Fatalf("order broken at %d: %s", i, flat[i].ID)
		}
	}
}

func TestBatcher_Empty(t *testing.T) {
	if batches := NewBatcher(20, 50).Batches(nil); batches != nil {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}
