package keywords

import (
	"sort"
	"strings"

	rake "github.com/afjoseph/RAKE.Go"
)

const (
	// Document-level tagging: multi-word phrases, generous cap.
	docMaxPhraseLen = 3
	docTopN         = 50
	// Chunk-level tagging: single words, small cap.
	chunkMaxPhraseLen = 1
	chunkTopN         = 5

	topWordCount = 10
)

// Tags is the result of tagging one text segment.
type Tags struct {
	// Keywords holds extracted phrases ranked most relevant first.
	Keywords []string `json:"keywords"`
	// TopWords lists the ten most frequent individual words across all
	// keyword phrases, comma separated.
	TopWords string `json:"top_10_keywords"`
}

// Extractor performs unsupervised keyword extraction. RAKE scores are
// higher-is-better, so ranking is descending by score throughout.
type Extractor struct{}

// NewExtractor creates a keyword extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract returns up to topN keyword phrases of at most maxPhraseLen words,
// ranked most relevant first.
func (e *Extractor) Extract(text string, maxPhraseLen, topN int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pairs := rake.RunRake(text)
	out := make([]string, 0, topN)
	for _, pair := range pairs {
		phrase := strings.TrimSpace(pair.Key)
		if phrase == "" {
			continue
		}
		if maxPhraseLen > 0 && len(strings.Fields(phrase)) > maxPhraseLen {
			continue
		}
		out = append(out, phrase)
		if topN > 0 && len(out) >= topN {
			break
		}
	}
	return out
}

// TagDocument tags a document-level segment: 1-3 word phrases, top 50,
// plus the top-word summary.
func (e *Extractor) TagDocument(text string) Tags {
	kws := e.Extract(text, docMaxPhraseLen, docTopN)
	return Tags{Keywords: kws, TopWords: topWords(kws)}
}

// TagChunk tags an individual chunk: single-word candidates, top 5.
func (e *Extractor) TagChunk(text string) Tags {
	kws := e.Extract(text, chunkMaxPhraseLen, chunkTopN)
	return Tags{Keywords: kws, TopWords: topWords(kws)}
}

// topWords tokenizes every phrase and returns the ten most frequent words,
// comma separated. Ties break lexicographically for determinism.
func topWords(phrases []string) string {
	counts := map[string]int{}
	for _, phrase := range phrases {
		for _, word := range strings.Fields(strings.ToLower(phrase)) {
			counts[word]++
		}
	}
	if len(counts) == 0 {
		return ""
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > topWordCount {
		words = words[:topWordCount]
	}
	return strings.Join(words, ", ")
}
