package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Databank maintains a durable, deduplicated superset of every keyword seen
// across ingestion runs. The file is replaced wholesale via an atomic rename
// on each update, so a crash mid-write never corrupts the committed state.
type Databank struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewDatabank creates a databank persisted at path.
func NewDatabank(path string, logger *zap.Logger) *Databank {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Databank{path: path, logger: logger.Named("databank")}
}

// Load returns the persisted keyword set. A missing file yields an empty
// set; a corrupt file is logged and treated as empty rather than aborting.
func (b *Databank) Load() []string {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("failed to read keyword databank, treating as empty",
				zap.String("path", b.path), zap.Error(err))
		}
		return nil
	}
	var existing []string
	if err := json.Unmarshal(data, &existing); err != nil {
		b.logger.Warn("failed to decode keyword databank, treating as empty",
			zap.String("path", b.path), zap.Error(err))
		return nil
	}
	return existing
}

// Update merges newKeywords into the persisted set. The merged set is
// written to a temporary file and atomically renamed over the live one.
// Unlike per-file extraction failures, a write failure here propagates to
// the caller after cleaning up the temporary artifact: silently losing the
// bank would silently degrade downstream keyword features.
func (b *Databank) Update(newKeywords []string) error {
	if len(newKeywords) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	set := map[string]struct{}{}
	for _, kw := range b.Load() {
		set[kw] = struct{}{}
	}
	for _, kw := range newKeywords {
		if kw != "" {
			set[kw] = struct{}{}
		}
	}
	merged := make([]string, 0, len(set))
	for kw := range set {
		merged = append(merged, kw)
	}
	sort.Strings(merged)

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("keywords: encode databank: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("keywords: write databank temp: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("keywords: replace databank: %w", err)
	}
	return nil
}
