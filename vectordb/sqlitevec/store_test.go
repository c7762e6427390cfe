package sqlitevec

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyp-cnc/ragstore/schema"
)

// bagEmbedder is a deterministic word-hash bag-of-words embedder for tests.
type bagEmbedder struct{ dim int }

func (e bagEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%uint32(e.dim)]++
	}
	return vec
}

func (e bagEmbedder) EmbedDocuments(_ context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = e.embed(doc)
	}
	return out, nil
}

func (e bagEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), "testing", WithEmbedder(bagEmbedder{dim: 64}), WithEmbeddingModel("bag-64"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_UpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "doc-1", Content: "original content about machining"},
	}))
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "doc-1", Content: "replacement content about calibration"},
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Query(ctx, "replacement content about calibration", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].ID)
	assert.Equal(t, "replacement content about calibration", results[0].Content)
}

func TestStore_QueryEmptyCollection(t *testing.T) {
	store := newTestStore(t)
	results, err := store.Query(context.Background(), "anything", 3, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_QueryKLargerThanCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "a", Content: "milling spindle speed"},
		{ID: "b", Content: "coolant flow rate"},
	}))

	results, err := store.Query(ctx, "spindle", 50, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStore_QueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "match", Content: "tool wear compensation strategies for cnc lathes"},
		{ID: "other", Content: "cafeteria menu on friday includes noodles"},
	}))

	results, err := store.Query(ctx, "tool wear compensation strategies", 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "match", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_KeywordFilterIsInclusive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "only-a", Content: "first document", Metadata: schema.Metadata{Keywords: []string{"a"}}},
		{ID: "only-b", Content: "second document", Metadata: schema.Metadata{Keywords: []string{"b"}}},
		{ID: "both", Content: "third document", Metadata: schema.Metadata{Keywords: []string{"a", "b"}}},
	}))

	results, err := store.Query(ctx, "document", 10, []string{"a"})
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, doc := range results {
		ids[doc.ID] = true
	}
	assert.True(t, ids["only-a"])
	assert.True(t, ids["both"])
	assert.False(t, ids["only-b"])
}

func TestStore_KeywordSlotBound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	keywords := []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10", "k11"}
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "wide", Content: "document with many keywords", Metadata: schema.Metadata{Keywords: keywords}},
	}))

	// The tenth keyword occupies the last slot.
	results, err := store.Query(ctx, "document", 10, []string{"k9"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Keywords beyond the slot capacity are silently dropped.
	results, err = store.Query(ctx, "document", 10, []string{"k10"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_UpsertDerivesIDFromContent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, []schema.Document{{Content: "anonymous chunk"}}))
	require.NoError(t, store.Upsert(ctx, []schema.Document{{Content: "anonymous chunk"}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same content without id should collapse to one row")
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, []schema.Document{
		{ID: "a", Content: "one"},
		{ID: "b", Content: "two"},
		{ID: "c", Content: "three"},
	}))

	docs, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestOpen_RequiresCollectionName(t *testing.T) {
	_, err := Open(t.TempDir(), "")
	assert.Error(t, err)
}
