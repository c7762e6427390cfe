package vectordb

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nyp-cnc/ragstore/embeddings"
	"github.com/nyp-cnc/ragstore/vectordb/sqlitevec"
)

// Registry owns every open collection store for the process. Collections are
// opened lazily on first access and shared afterwards; the registry is meant
// to live at the composition root and be passed by reference, not held as
// package-level state.
type Registry struct {
	root       string
	embedder   embeddings.Embedder
	embedModel string
	logger     *zap.Logger

	mu     sync.Mutex
	stores map[string]*sqlitevec.Store
}

// NewRegistry creates a registry rooted at the given data directory.
func NewRegistry(root string, embedder embeddings.Embedder, embedModel string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		root:       root,
		embedder:   embedder,
		embedModel: embedModel,
		logger:     logger.Named("registry"),
		stores:     map[string]*sqlitevec.Store{},
	}
}

// Collection returns the store for the named collection, opening it on first
// access. Open failure propagates to the caller; no retry happens here.
func (r *Registry) Collection(name string) (*sqlitevec.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("vectordb: collection name required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[name]; ok {
		return store, nil
	}
	store, err := sqlitevec.Open(r.root, name,
		sqlitevec.WithEmbedder(r.embedder),
		sqlitevec.WithEmbeddingModel(r.embedModel))
	if err != nil {
		return nil, err
	}
	r.logger.Info("opened collection", zap.String("collection", name), zap.String("path", store.Path()))
	r.stores[name] = store
	return store, nil
}

// Close releases every open collection store. The first error wins.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, store := range r.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, name)
	}
	return firstErr
}
