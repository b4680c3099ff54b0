package scoring

import (
	"errors"
	"math"
)

var (
	// ErrDimensionMismatch reports vectors of different length, usually a sign
	// of mixed embedding models in the dataset.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrDegenerateVector reports a zero-magnitude vector. Callers must treat
	// the similarity as 0.
	ErrDegenerateVector = errors.New("zero-magnitude embedding")
)

// CosineSimilarity returns the cosine similarity of a and b remapped from
// [-1,1] to [0,1]. The remap happens here, once, so downstream score math can
// assume every fit value already lives in [0,1].
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	if len(a) == 0 {
		return 0, ErrDegenerateVector
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return Clamp01((cos + 1) / 2), nil
}

// Clamp01 caps x to the [0,1] range.
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
