package ingest

// Default chunking geometry: fixed-size overlapping character windows.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 200
)

// Chunk is a windowed sub-segment of a cleaned text segment. Start records
// the chunk's offset in the source segment so ordering can be reconstructed.
type Chunk struct {
	Text  string
	Start int
	End   int
}

// SplitText splits text into overlapping fixed-size windows. The last window
// may be shorter than size; consecutive windows share overlap bytes. An
// overlap >= size collapses to size/4 to guarantee forward progress.
func SplitText(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	if text == "" {
		return nil
	}
	step := size - overlap
	var chunks []Chunk
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{Text: text[start:end], Start: start, End: end})
		if end == len(text) {
			break
		}
	}
	return chunks
}
