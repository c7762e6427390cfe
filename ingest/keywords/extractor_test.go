package keywords

import (
	"strings"
	"testing"
)

const sampleText = `Computer numerical control machines automate machining
operations. Spindle speed and feed rate determine surface finish quality.
Tool wear compensation keeps dimensional accuracy stable across long runs.
Coolant delivery prevents thermal distortion during heavy milling cuts.`

func TestExtractor_ExtractRespectsLimits(t *testing.T) {
	e := NewExtractor()

	testCases := []struct {
		name         string
		maxPhraseLen int
		topN         int
	}{
		{name: "single word top 5", maxPhraseLen: 1, topN: 5},
		{name: "three word top 50", maxPhraseLen: 3, topN: 50},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			phrases := e.Extract(sampleText, tc.maxPhraseLen, tc.topN)
			if len(phrases) == 0 {
				t.Fatal("expected keywords from sample text")
			}
			if len(phrases) > tc.topN {
				t.Fatalf("expected at most %d phrases, got %d", tc.topN, len(phrases))
			}
			for _, phrase := range phrases {
				if words := len(strings.Fields(phrase)); words > tc.maxPhraseLen {
					t.Errorf("phrase %q has %d words, limit %d", phrase, words, tc.maxPhraseLen)
				}
			}
		})
	}
}

func TestExtractor_EmptyText(t *testing.T) {
	e := NewExtractor()
	if got := e.Extract("   \n\t ", 3, 50); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestTagDocument(t *testing.T) {
	e := NewExtractor()
	tags := e.TagDocument(sampleText)
	if len(tags.Keywords) == 0 {
		t.Fatal("expected document keywords")
	}
	if tags.TopWords == "" {
		t.Fatal("expected top-word summary")
	}
	if words := strings.Split(tags.TopWords, ", "); len(words) > 10 {
		t.Fatalf("expected at most 10 top words, got %d", len(words))
	}
}

func TestTopWords(t *testing.T) {
	got := topWords([]string{"vector store", "vector search", "store layout"})
	fields := strings.Split(got, ", ")
	// "vector" and "store" appear twice and must lead; ties break
	// lexicographically.
	if fields[0] != "store" || fields[1] != "vector" {
		t.Fatalf("expected store, vector to lead, got %q", got)
	}
}

func TestTopWords_Empty(t *testing.T) {
	if got := topWords(nil); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}
