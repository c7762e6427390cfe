package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nyp-cnc/ragstore/ingest/cache"
	"github.com/nyp-cnc/ragstore/ingest/extract"
	"github.com/nyp-cnc/ragstore/ingest/keywords"
	"github.com/nyp-cnc/ragstore/matching"
	"github.com/nyp-cnc/ragstore/schema"
	"github.com/nyp-cnc/ragstore/vectordb"
)

const (
	// Below this many segments the per-segment stages run sequentially;
	// thread-pool overhead outweighs the benefit on small files.
	parallelSegmentThreshold = 8
	// Store insertion is further capped to avoid oversubscribing the
	// underlying storage connection.
	maxInsertWorkers = 3
)

// Config bounds the pipeline's batching and parallelism.
type Config struct {
	BatchSize        int
	MaxBatchMemoryMB int
	MaxWorkers       int
	ChunkSize        int
	ChunkOverlap     int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxBatchMemoryMB <= 0 {
		c.MaxBatchMemoryMB = DefaultMaxBatchMemoryMB
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 8
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
	return c
}

// Summary reports the outcome of a directory-wide ingestion run. Per-file
// failures never abort the run; they are recorded here instead.
type Summary struct {
	Succeeded int
	Failed    int
	Chunks    int
	Failures  map[string]string
}

// Pipeline turns source files into persisted, searchable document chunks:
// extract, clean, keyword-tag, chunk, batch, insert, then update the
// keyword databank. Tagging and chunking are cached by content hash.
type Pipeline struct {
	cfg       Config
	logger    *zap.Logger
	fs        FS
	extractor *extract.Extractor
	tagger    *keywords.Extractor
	databank  *keywords.Databank
	matcher   *matching.Matcher
	batcher   *Batcher

	tagCache   *cache.Map[string, keywords.Tags]
	chunkCache *cache.Map[string, []Chunk]
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithFS overrides the filesystem backend.
func WithFS(fs FS) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithMatcher sets inclusion/exclusion rules for directory runs.
func WithMatcher(m *matching.Matcher) Option {
	return func(p *Pipeline) { p.matcher = m }
}

// WithDatabank sets the keyword databank updated after each file.
func WithDatabank(b *keywords.Databank) Option {
	return func(p *Pipeline) { p.databank = b }
}

// WithExtractor overrides the text extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// New creates an ingestion pipeline.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	p := &Pipeline{
		cfg:        cfg,
		logger:     logger.Named("pipeline"),
		fs:         NewAFS(),
		tagger:     keywords.NewExtractor(),
		matcher:    matching.New(),
		batcher:    NewBatcher(cfg.BatchSize, cfg.MaxBatchMemoryMB),
		tagCache:   cache.NewMap[string, keywords.Tags](),
		chunkCache: cache.NewMap[string, []Chunk](),
	}
	p.extractor = extract.New(logger)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process ingests a single file into the store. A nil store extracts and
// chunks without persisting, for classification-only flows. The returned
// count is the number of chunks inserted (or prepared when store is nil).
// Extraction exhaustion yields zero chunks without an error; databank and
// download failures propagate.
func (p *Pipeline) Process(ctx context.Context, location string, store vectordb.VectorStore) (int, error) {
	norm, err := normalizeLocation(location)
	if err != nil {
		return 0, fmt.Errorf("ingest: normalize %s: %w", location, err)
	}
	data, err := p.fs.DownloadWithURL(ctx, norm)
	if err != nil {
		return 0, fmt.Errorf("ingest: read %s: %w", location, err)
	}
	return p.processData(ctx, url.Path(norm), data, store)
}

func (p *Pipeline) processData(ctx context.Context, path string, data []byte, store vectordb.VectorStore) (int, error) {
	started := time.Now()

	segments := p.extractor.Extract(ctx, path, data)
	if len(segments) == 0 {
		p.logger.Warn("no text extracted", zap.String("path", path))
		return 0, nil
	}
	extractDone := time.Now()

	cleaned := make([]string, 0, len(segments))
	kept := segments[:0]
	for _, seg := range segments {
		text := CleanText(seg.Text)
		if text == "" {
			continue
		}
		cleaned = append(cleaned, text)
		kept = append(kept, seg)
	}
	segments = kept
	if len(segments) == 0 {
		p.logger.Warn("all segments empty after cleaning", zap.String("path", path))
		return 0, nil
	}
	cleanDone := time.Now()

	tags := p.tagSegments(ctx, cleaned)
	tagDone := time.Now()

	docs := p.chunkSegments(ctx, path, segments, cleaned, tags)
	chunkDone := time.Now()

	p.logger.Debug("pipeline stages timed",
		zap.String("path", path),
		zap.Int("segments", len(segments)),
		zap.Int("chunks", len(docs)),
		zap.Duration("extract", extractDone.Sub(started)),
		zap.Duration("clean", cleanDone.Sub(extractDone)),
		zap.Duration("tag", tagDone.Sub(cleanDone)),
		zap.Duration("chunk", chunkDone.Sub(tagDone)))

	if store == nil {
		return len(docs), nil
	}

	inserted, err := p.insert(ctx, path, docs, store)
	if err != nil {
		return inserted, err
	}

	if p.databank != nil {
		var seen []string
		for _, t := range tags {
			seen = append(seen, t.Keywords...)
		}
		if err := p.databank.Update(seen); err != nil {
			return inserted, fmt.Errorf("ingest: update keyword databank: %w", err)
		}
	}
	return inserted, nil
}

// tagSegments keyword-tags each cleaned segment, reusing cached tags by
// content hash. Runs in parallel only past the segment threshold.
func (p *Pipeline) tagSegments(ctx context.Context, cleaned []string) []keywords.Tags {
	tags := make([]keywords.Tags, len(cleaned))
	tagOne := func(i int) {
		key := cache.ContentKey(cleaned[i])
		if hit, ok := p.tagCache.Get(key); ok {
			tags[i] = *hit
			return
		}
		t := p.tagger.TagDocument(cleaned[i])
		p.tagCache.Set(key, &t)
		tags[i] = t
	}
	if len(cleaned) <= parallelSegmentThreshold {
		for i := range cleaned {
			tagOne(i)
		}
		return tags
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxWorkers)
	for i := range cleaned {
		g.Go(func() error {
			tagOne(i)
			return nil
		})
	}
	_ = g.Wait()
	return tags
}

// chunkSegments windows every segment into overlapping chunks, preserving
// chunk order within a segment. Only the windows are cached by segment
// content hash; ids and metadata embed the file path, so they are rebuilt on
// every call and two files with identical content stay distinct rows.
func (p *Pipeline) chunkSegments(ctx context.Context, path string, segments []extract.Segment, cleaned []string, tags []keywords.Tags) []schema.Document {
	perSegment := make([][]schema.Document, len(segments))
	chunkOne := func(i int) {
		key := cache.ContentKey(cleaned[i])
		var chunks []Chunk
		if hit, ok := p.chunkCache.Get(key); ok {
			chunks = *hit
		} else {
			chunks = SplitText(cleaned[i], p.cfg.ChunkSize, p.cfg.ChunkOverlap)
			p.chunkCache.Set(key, &chunks)
		}
		docs := make([]schema.Document, 0, len(chunks))
		for _, chunk := range chunks {
			meta := schema.Metadata{
				Source:   path,
				Keywords: p.tagger.TagChunk(chunk.Text).Keywords,
				TopWords: tags[i].TopWords,
			}
			meta.SetExtra("start", chunk.Start)
			meta.SetExtra("end", chunk.End)
			meta.SetExtra("segment", i)
			if segments[i].Kind != "" {
				meta.SetExtra("kind", segments[i].Kind)
			}
			docs = append(docs, schema.Document{
				ID:       fmt.Sprintf("%s#%d:%d-%d", path, i, chunk.Start, chunk.End),
				Content:  chunk.Text,
				Metadata: meta,
			})
		}
		perSegment[i] = docs
	}
	if len(segments) <= parallelSegmentThreshold {
		for i := range segments {
			chunkOne(i)
		}
	} else {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.MaxWorkers)
		for i := range segments {
			g.Go(func() error {
				chunkOne(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	var docs []schema.Document
	for _, segDocs := range perSegment {
		docs = append(docs, segDocs...)
	}
	return docs
}

// insert submits batches to the store through a bounded worker pool. The
// store serialises its own writes, so the pool parallelises preparation
// only. A failed batch is logged and counted without aborting the rest.
func (p *Pipeline) insert(ctx context.Context, path string, docs []schema.Document, store vectordb.VectorStore) (int, error) {
	batches := p.batcher.Batches(docs)
	if len(batches) == 0 {
		return 0, nil
	}
	workers := p.cfg.MaxWorkers
	if len(batches) < workers {
		workers = len(batches)
	}
	if workers > maxInsertWorkers {
		workers = maxInsertWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, fmt.Errorf("ingest: create insert pool: %w", err)
	}
	defer pool.Release()

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		inserted     int
		failedChunks int
	)
	for _, batch := range batches {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := store.Upsert(ctx, batch); err != nil {
				p.logger.Warn("batch insert failed",
					zap.String("path", path),
					zap.Int("batch_size", len(batch)),
					zap.Error(err))
				mu.Lock()
				failedChunks += len(batch)
				mu.Unlock()
				return
			}
			mu.Lock()
			inserted += len(batch)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failedChunks += len(batch)
			mu.Unlock()
		}
	}
	wg.Wait()

	if failedChunks > 0 {
		p.logger.Warn("some chunks failed to insert",
			zap.String("path", path),
			zap.Int("inserted", inserted),
			zap.Int("failed", failedChunks))
	}
	return inserted, nil
}

// ProcessDir walks a directory recursively and ingests every file the
// matcher admits. Files are processed unordered in parallel; one file's
// failure never aborts the run.
func (p *Pipeline) ProcessDir(ctx context.Context, location string, store vectordb.VectorStore) (*Summary, error) {
	norm, err := normalizeLocation(location)
	if err != nil {
		return nil, fmt.Errorf("ingest: normalize %s: %w", location, err)
	}
	files, err := p.collectFiles(ctx, norm)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Failures: map[string]string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxWorkers)
	for _, fileURL := range files {
		g.Go(func() error {
			n, err := p.Process(gctx, fileURL, store)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				summary.Failures[fileURL] = err.Error()
				p.logger.Warn("file ingestion failed", zap.String("path", fileURL), zap.Error(err))
			case n == 0:
				summary.Failed++
				summary.Failures[fileURL] = "processed: 0 chunks"
			default:
				summary.Succeeded++
				summary.Chunks += n
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("directory ingestion complete",
		zap.String("location", location),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("chunks", summary.Chunks))
	return summary, nil
}

func (p *Pipeline) collectFiles(ctx context.Context, location string) ([]string, error) {
	objects, err := p.fs.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("ingest: list %s: %w", location, err)
	}
	var files []string
	for _, object := range objects {
		objectURL := object.URL()
		if object.IsDir() {
			if url.Equals(objectURL, location) || url.Path(objectURL) == url.Path(location) {
				continue
			}
			sub, err := p.collectFiles(ctx, url.Join(location, object.Name()))
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		if p.matcher.IsExcluded(url.Path(objectURL), int(object.Size())) {
			continue
		}
		files = append(files, objectURL)
	}
	return files, nil
}
