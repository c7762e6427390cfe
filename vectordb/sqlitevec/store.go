package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/nyp-cnc/ragstore/embeddings"
	"github.com/nyp-cnc/ragstore/ingest/cache"
	"github.com/nyp-cnc/ragstore/schema"
)

const storeExtension = ".sqlite"

// Store is a sqlite backed vector store for one collection. Retrieval is a
// brute-force cosine scan over the collection (or the keyword-filtered
// subset), which keeps the on-disk schema trivial at the collection sizes
// this system targets.
type Store struct {
	db            *sql.DB
	collection    string
	path          string
	embedder      embeddings.Embedder
	embedModel    string
	openedLocally bool

	// writeMu serialises upserts so the database never observes concurrent
	// writers even when upstream pipeline stages are parallel.
	writeMu sync.Mutex
}

// Option configures the store.
type Option func(*Store)

// WithDB sets an existing *sql.DB to use instead of opening one.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

// WithEmbedder sets the embedding provider used for documents without an
// attached embedding and for query texts.
func WithEmbedder(e embeddings.Embedder) Option {
	return func(s *Store) { s.embedder = e }
}

// WithEmbeddingModel records the embedding model identifier stored with rows.
func WithEmbeddingModel(model string) Option {
	return func(s *Store) { s.embedModel = model }
}

// Open opens or creates the collection store under root. The on-disk layout
// is one directory per collection holding a single sqlite file named after
// the collection. Open failure is fatal to the caller; there is no retry.
func Open(root, collection string, opts ...Option) (*Store, error) {
	if collection == "" {
		return nil, fmt.Errorf("sqlitevec: collection name required")
	}
	s := &Store{collection: collection}
	for _, opt := range opts {
		opt(s)
	}
	if s.db == nil {
		dir := filepath.Join(root, collection)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlitevec: create collection dir: %w", err)
		}
		s.path = filepath.Join(dir, collection+storeExtension)
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return nil, fmt.Errorf("sqlitevec: open %s: %w", s.path, err)
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		s.db = db
		s.openedLocally = true
	}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying DB if the store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Collection returns the collection name.
func (s *Store) Collection() string { return s.collection }

// Path returns the on-disk location of the store file.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureSchema(ctx context.Context) error {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	content          TEXT NOT NULL,
	meta             TEXT,
	embedding        BLOB NOT NULL,
	embedding_model  TEXT`)
	for i := 0; i < schema.KeywordSlotCount; i++ {
		fmt.Fprintf(&b, ",\n\tkw%d TEXT", i)
	}
	b.WriteString("\n);")
	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("sqlitevec: ensure schema: %w", err)
	}
	return nil
}

// Upsert embeds and writes documents, replacing existing rows by id. A
// document without an id gets one derived from its content hash. Embedding
// failure aborts the whole batch; batching at the pipeline layer provides
// isolation between batches.
func (s *Store) Upsert(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.embedMissing(ctx, docs); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stmt, err := s.db.PrepareContext(ctx, upsertSQL())
	if err != nil {
		return fmt.Errorf("sqlitevec: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		doc := &docs[i]
		if doc.ID == "" {
			doc.ID = cache.ContentKey(doc.Content)
		}
		metaJSON, err := schema.EncodeMetadata(doc.Metadata)
		if err != nil {
			return fmt.Errorf("sqlitevec: encode metadata for %s: %w", doc.ID, err)
		}
		slots := doc.KeywordSlots()
		args := make([]interface{}, 0, 5+schema.KeywordSlotCount)
		args = append(args, doc.ID, doc.Content, metaJSON, EncodeEmbedding(doc.Embedding), s.embedModel)
		for _, slot := range slots {
			if slot == "" {
				args = append(args, nil)
			} else {
				args = append(args, slot)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlitevec: upsert %s: %w", doc.ID, err)
		}
	}
	return nil
}

func upsertSQL() string {
	cols := []string{"id", "content", "meta", "embedding", "embedding_model"}
	for i := 0; i < schema.KeywordSlotCount; i++ {
		cols = append(cols, fmt.Sprintf("kw%d", i))
	}
	updates := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		updates = append(updates, col+"=excluded."+col)
	}
	return fmt.Sprintf(`INSERT INTO documents(%s) VALUES(%s)
ON CONFLICT(id) DO UPDATE SET %s`,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ","),
		strings.Join(updates, ", "))
}

func (s *Store) embedMissing(ctx context.Context, docs []schema.Document) error {
	var texts []string
	var indexes []int
	for i := range docs {
		if len(docs[i].Embedding) == 0 {
			texts = append(texts, docs[i].Content)
			indexes = append(indexes, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	if s.embedder == nil {
		return fmt.Errorf("sqlitevec: embedder required to embed %d documents", len(texts))
	}
	vecs, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("sqlitevec: embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("sqlitevec: embedder returned %d vectors for %d documents", len(vecs), len(texts))
	}
	for j, idx := range indexes {
		docs[idx].Embedding = vecs[j]
	}
	return nil
}

// Query embeds the query text once, scans every candidate row (restricted by
// the keyword slots when a filter is given) and returns the top k documents
// by cosine similarity. Querying an empty collection returns an empty slice.
func (s *Store) Query(ctx context.Context, query string, k int, keywordFilter []string) ([]schema.Document, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("sqlitevec: embedder required for query")
	}
	if k <= 0 {
		k = 10
	}
	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: embed query: %w", err)
	}

	sqlText, args := candidateSQL(keywordFilter)
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: query candidates: %w", err)
	}
	defer rows.Close()

	var scored []schema.Document
	for rows.Next() {
		var id, content string
		var metaJSON sql.NullString
		var blob []byte
		if err := rows.Scan(&id, &content, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("sqlitevec: scan candidate: %w", err)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		meta, err := schema.DecodeMetadata(metaJSON.String)
		if err != nil {
			return nil, fmt.Errorf("sqlitevec: decode metadata for %s: %w", id, err)
		}
		scored = append(scored, schema.Document{
			ID:       id,
			Content:  content,
			Metadata: meta,
			Score:    CosineSimilarity(qvec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable sort keeps tie ordering deterministic across runs.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// candidateSQL builds the candidate selection. The keyword filter is pushed
// down as an OR across every slot column so matching stays O(1) per row
// without JSON parsing.
func candidateSQL(keywordFilter []string) (string, []interface{}) {
	base := `SELECT id, content, meta, embedding FROM documents`
	if len(keywordFilter) == 0 {
		return base, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keywordFilter)), ",")
	conds := make([]string, 0, schema.KeywordSlotCount)
	args := make([]interface{}, 0, schema.KeywordSlotCount*len(keywordFilter))
	for i := 0; i < schema.KeywordSlotCount; i++ {
		conds = append(conds, fmt.Sprintf("kw%d IN (%s)", i, placeholders))
		for _, kw := range keywordFilter {
			args = append(args, kw)
		}
	}
	return base + " WHERE " + strings.Join(conds, " OR "), args
}

// Get returns an unordered sample of up to limit documents without scoring.
func (s *Store) Get(ctx context.Context, limit int) ([]schema.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, meta FROM documents LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: get: %w", err)
	}
	defer rows.Close()

	var out []schema.Document
	for rows.Next() {
		var id, content string
		var metaJSON sql.NullString
		if err := rows.Scan(&id, &content, &metaJSON); err != nil {
			return nil, fmt.Errorf("sqlitevec: scan row: %w", err)
		}
		meta, err := schema.DecodeMetadata(metaJSON.String)
		if err != nil {
			return nil, fmt.Errorf("sqlitevec: decode metadata for %s: %w", id, err)
		}
		out = append(out, schema.Document{ID: id, Content: content, Metadata: meta})
	}
	return out, rows.Err()
}

// Count returns the number of rows in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitevec: count: %w", err)
	}
	return n, nil
}
