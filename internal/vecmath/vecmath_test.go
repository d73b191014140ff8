package vecmath

import (
	"math"
	"testing"
)

// TestCosine tests cosine similarity including degenerate input guards.
func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float64{1, 0},
			b:        []float64{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float64{1, 0},
			b:        []float64{-1, 0},
			expected: -1.0,
		},
		{
			name:     "nil first vector",
			a:        nil,
			b:        []float64{1, 2},
			expected: 0.0,
		},
		{
			name:     "empty second vector",
			a:        []float64{1, 2},
			b:        []float64{},
			expected: 0.0,
		},
		{
			name:     "mismatched lengths",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2},
			expected: 0.0,
		},
		{
			name:     "zero norm guard",
			a:        []float64{0, 0, 0},
			b:        []float64{1, 2, 3},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("Cosine returned NaN")
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Cosine() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

// TestClamp01 tests interval clamping including the NaN guard.
func TestClamp01(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"in range", 0.5, 0.5},
		{"below zero", -0.3, 0.0},
		{"above one", 1.7, 1.0},
		{"exactly zero", 0.0, 0.0},
		{"exactly one", 1.0, 1.0},
		{"NaN degrades to neutral", math.NaN(), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp01(tt.input); got != tt.expected {
				t.Errorf("Clamp01(%f) = %f, expected %f", tt.input, got, tt.expected)
			}
		})
	}
}
