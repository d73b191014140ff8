package ranking

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeCalibrationFile writes a temp calibration file and returns its path.
func writeCalibrationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}
	return path
}

// TestLoadCalibration tests file-level loading behavior.
func TestLoadCalibration(t *testing.T) {
	t.Run("empty path returns defaults without error", func(t *testing.T) {
		w, err := LoadCalibration("")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if w != DefaultWeights() {
			t.Error("expected default weights for empty path")
		}
	})

	t.Run("missing file returns defaults with error", func(t *testing.T) {
		w, err := LoadCalibration("/nonexistent/weights.json")
		if err == nil {
			t.Error("expected error for missing file")
		}
		if w != DefaultWeights() {
			t.Error("expected default weights on read failure")
		}
	})

	t.Run("malformed JSON returns defaults with error", func(t *testing.T) {
		path := writeCalibrationFile(t, "{not json")
		w, err := LoadCalibration(path)
		if err == nil {
			t.Error("expected error for malformed JSON")
		}
		if w != DefaultWeights() {
			t.Error("expected default weights on parse failure")
		}
	})

	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := writeCalibrationFile(t, `{"area_match": 0.5, "geo_proximity": 0.05}`)
		w, err := LoadCalibration(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.AreaMatch != 0.5 {
			t.Errorf("AreaMatch = %f, expected 0.5", w.AreaMatch)
		}
		if w.GeoProximity != 0.05 {
			t.Errorf("GeoProximity = %f, expected 0.05", w.GeoProximity)
		}
		// Untouched keys keep defaults.
		if w.Review != DefaultWeights().Review {
			t.Errorf("Review = %f, expected default %f", w.Review, DefaultWeights().Review)
		}
	})

	t.Run("numeric strings are coerced", func(t *testing.T) {
		path := writeCalibrationFile(t, `{"success_rate": "0.3"}`)
		w, err := LoadCalibration(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(w.SuccessRate-0.3) > 1e-9 {
			t.Errorf("SuccessRate = %f, expected 0.3", w.SuccessRate)
		}
	})
}

// TestMergeCalibration tests per-key partial-failure tolerance.
func TestMergeCalibration(t *testing.T) {
	defaults := DefaultWeights()

	tests := []struct {
		name     string
		raw      map[string]any
		check    string
		expected float64
	}{
		{
			name:     "plain float applied",
			raw:      map[string]any{KeyAreaMatch: 0.4},
			check:    KeyAreaMatch,
			expected: 0.4,
		},
		{
			name:     "numeric string coerced",
			raw:      map[string]any{KeyReview: "0.2"},
			check:    KeyReview,
			expected: 0.2,
		},
		{
			name:     "non-numeric string keeps default",
			raw:      map[string]any{KeyReview: "lots"},
			check:    KeyReview,
			expected: defaults.Review,
		},
		{
			name:     "boolean keeps default",
			raw:      map[string]any{KeyMaturity: true},
			check:    KeyMaturity,
			expected: defaults.Maturity,
		},
		{
			name:     "null keeps default",
			raw:      map[string]any{KeyQualification: nil},
			check:    KeyQualification,
			expected: defaults.Qualification,
		},
		{
			name:     "negative value keeps default",
			raw:      map[string]any{KeyGeoProximity: -0.5},
			check:    KeyGeoProximity,
			expected: defaults.GeoProximity,
		},
		{
			name:     "zero is a valid override",
			raw:      map[string]any{KeyReview: 0.0},
			check:    KeyReview,
			expected: 0.0,
		},
		{
			name:     "json number applied",
			raw:      map[string]any{KeySuccessRate: json.Number("0.25")},
			check:    KeySuccessRate,
			expected: 0.25,
		},
		{
			name:     "unparsable json number keeps default",
			raw:      map[string]any{KeySuccessRate: json.Number("12e")},
			check:    KeySuccessRate,
			expected: defaults.SuccessRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeCalibration(defaults, tt.raw)
			if got := merged.get(tt.check); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("%s = %f, expected %f", tt.check, got, tt.expected)
			}
		})
	}

	t.Run("unknown keys ignored and other keys untouched", func(t *testing.T) {
		merged := MergeCalibration(defaults, map[string]any{
			"turbo_boost": 0.9,
			KeyAreaMatch:  0.3,
		})
		if merged.AreaMatch != 0.3 {
			t.Errorf("AreaMatch = %f, expected 0.3", merged.AreaMatch)
		}
		if merged.SuccessRate != defaults.SuccessRate {
			t.Error("unrelated key changed by unknown calibration key")
		}
	})
}
