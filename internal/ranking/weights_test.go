package ranking

import (
	"math"
	"testing"
)

// TestPresetSums verifies every built-in preset sums to ~1.0.
func TestPresetSums(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			w, ok := PresetWeights(name)
			if !ok {
				t.Fatalf("preset %q not found", name)
			}

			var sum float64
			for _, v := range w.Map() {
				if v < 0 {
					t.Errorf("preset %q has negative weight %f", name, v)
				}
				sum += v
			}

			if math.Abs(sum-1.0) > 0.001 {
				t.Errorf("preset %q sums to %f, expected ~1.0", name, sum)
			}
		})
	}
}

// TestPresetWeightsUnknown verifies unknown names report not-found.
func TestPresetWeightsUnknown(t *testing.T) {
	if _, ok := PresetWeights("turbo"); ok {
		t.Error("expected unknown preset to report not found")
	}
	if _, ok := PresetWeights(""); ok {
		t.Error("expected empty preset name to report not found")
	}
}

// TestWeightsMap verifies the map carries all eight feature keys.
func TestWeightsMap(t *testing.T) {
	m := DefaultWeights().Map()

	if len(m) != len(FeatureKeys) {
		t.Fatalf("expected %d keys, got %d", len(FeatureKeys), len(m))
	}
	for _, key := range FeatureKeys {
		if _, ok := m[key]; !ok {
			t.Errorf("missing feature key %q in map", key)
		}
	}
}

// TestWeightsGetSetRoundTrip verifies key accessors cover every feature.
func TestWeightsGetSetRoundTrip(t *testing.T) {
	var w Weights
	for i, key := range FeatureKeys {
		w.set(key, float64(i+1)*0.1)
	}
	for i, key := range FeatureKeys {
		expected := float64(i+1) * 0.1
		if got := w.get(key); got != expected {
			t.Errorf("get(%q) = %f, expected %f", key, got, expected)
		}
	}

	if got := w.get("unknown_key"); got != 0 {
		t.Errorf("get(unknown) = %f, expected 0", got)
	}
}
