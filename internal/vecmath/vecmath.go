// Package vecmath provides vector similarity primitives for semantic
// case matching.
package vecmath

import "math"

// Cosine returns the cosine similarity between two vectors in [-1, 1].
// Returns 0.0 if either vector is nil, empty, of mismatched length, or has
// zero norm. The zero-norm guard prevents NaN from degenerate embeddings;
// callers clamp to [0, 1] where required.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 clamps v to the closed interval [0, 1]. NaN clamps to 0 so that
// degenerate inputs degrade to the documented neutral feature value.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.0
	}
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}
