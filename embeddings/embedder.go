package embeddings

import "context"

// Embedder maps text to fixed-length numeric vectors. Implementations are
// external collaborators (hosted APIs or local model servers) and are
// expected to return an error on failure rather than a sentinel vector.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
