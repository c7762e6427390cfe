package vectordb

import (
	"context"

	"github.com/nyp-cnc/ragstore/schema"
)

// VectorStore defines durable storage and similarity retrieval for one named
// collection of documents.
type VectorStore interface {
	// Upsert writes documents, replacing any existing row with the same id.
	// Embeddings are computed for documents that do not carry one; an
	// embedding failure aborts the whole batch.
	Upsert(ctx context.Context, docs []schema.Document) error
	// Query embeds the query text once and returns up to k documents ranked
	// by cosine similarity, descending. A non-empty keywordFilter restricts
	// candidates to rows where any keyword slot matches any filter value.
	Query(ctx context.Context, query string, k int, keywordFilter []string) ([]schema.Document, error)
	// Get returns an unordered sample of up to limit documents, for
	// diagnostics only.
	Get(ctx context.Context, limit int) ([]schema.Document, error)
}
