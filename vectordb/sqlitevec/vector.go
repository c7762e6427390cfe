package sqlitevec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// cosineEpsilon guards against division by zero when either vector has zero
// magnitude.
const cosineEpsilon = 1e-8

// EncodeEmbedding serialises a float32 vector as little-endian bytes.
func EncodeEmbedding(vec []float32) []byte {
	out := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// DecodeEmbedding deserialises a little-endian float32 vector.
func DecodeEmbedding(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("sqlitevec: embedding blob length %d not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b| + epsilon). The result is
// nominally within [-1, 1] but is not clamped.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}
