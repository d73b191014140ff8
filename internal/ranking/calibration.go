package ranking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// LoadCalibration loads a trained weight vector from a flat JSON file
// mapping feature keys to numeric values, e.g.
//
//	{"area_match": 0.25, "geo_proximity": "0.10", ...}
//
// Values that are numeric strings are coerced to float. Any key that is
// missing, non-coercible or negative falls back to the default preset value
// for that key individually; a bad entry never rejects the whole vector.
// Unknown keys are logged and ignored.
//
// On file-level failure (missing file, malformed JSON) the defaults are
// returned together with the error so callers can keep a last-known-good
// vector instead.
func LoadCalibration(filePath string) (Weights, error) {
	defaults := DefaultWeights()

	if filePath == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read weight calibration file, using defaults",
			"path", filePath,
			"error", err)
		return defaults, fmt.Errorf("failed to read calibration file: %w", err)
	}

	// UseNumber keeps numeric values as json.Number so coerceFloat sees
	// the literal text rather than a possibly lossy float64.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		slog.Warn("failed to parse weight calibration file, using defaults",
			"path", filePath,
			"error", err)
		return defaults, fmt.Errorf("failed to parse calibration file: %w", err)
	}

	merged := MergeCalibration(defaults, raw)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges a raw calibration map over base weights.
// Per-key partial-failure tolerance: only keys that coerce to a
// non-negative float are applied; everything else keeps the base value.
func MergeCalibration(base Weights, raw map[string]any) Weights {
	result := base

	known := make(map[string]bool, len(FeatureKeys))
	for _, key := range FeatureKeys {
		known[key] = true
	}

	for key, value := range raw {
		if !known[key] {
			slog.Warn("ignoring unknown calibration key", "key", key)
			continue
		}
		v, ok := coerceFloat(value)
		if !ok || v < 0 {
			slog.Warn("calibration value not usable, keeping default for key",
				"key", key,
				"value", value)
			continue
		}
		result.set(key, v)
	}

	return result
}

// coerceFloat converts a decoded JSON value into a float64. Numeric strings
// are accepted; booleans, nulls, arrays and objects are not.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults, loaded Weights) {
	var overrides []string

	for _, key := range FeatureKeys {
		if loaded.get(key) != defaults.get(key) {
			overrides = append(overrides, fmt.Sprintf("%s: %.3f -> %.3f",
				key, defaults.get(key), loaded.get(key)))
		}
	}

	if len(overrides) > 0 {
		slog.Info("loaded weight calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded weight calibration (using all defaults)")
	}
}
