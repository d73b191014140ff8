// Package ranking provides the weight vectors that combine match features
// into a composite score, with named presets and calibration support for
// externally trained weights.
package ranking

// Feature keys shared between weight vectors, the calibration file format
// and score breakdowns.
const (
	KeyAreaMatch      = "area_match"
	KeyCaseSimilarity = "case_similarity"
	KeySuccessRate    = "success_rate"
	KeyGeoProximity   = "geo_proximity"
	KeyQualification  = "qualification"
	KeyMaturity       = "maturity"
	KeyReview         = "review"
	KeyCapacityFit    = "capacity_fit"
)

// FeatureKeys lists all eight feature keys in canonical order.
var FeatureKeys = []string{
	KeyAreaMatch,
	KeyCaseSimilarity,
	KeySuccessRate,
	KeyGeoProximity,
	KeyQualification,
	KeyMaturity,
	KeyReview,
	KeyCapacityFit,
}

// Weights is a complete weight vector over the eight feature keys. All
// values are non-negative and each preset sums to ~1.0, though the sum is
// not strictly enforced: a calibrated vector may drift slightly.
type Weights struct {
	AreaMatch      float64 `json:"area_match"`
	CaseSimilarity float64 `json:"case_similarity"`
	SuccessRate    float64 `json:"success_rate"`
	GeoProximity   float64 `json:"geo_proximity"`
	Qualification  float64 `json:"qualification"`
	Maturity       float64 `json:"maturity"`
	Review         float64 `json:"review"`
	CapacityFit    float64 `json:"capacity_fit"`
}

// Preset names.
const (
	PresetBalanced = "balanced"
	PresetFast     = "fast"
	PresetExpert   = "expert"
	PresetB2B      = "b2b"

	// PresetTrained names the calibration-file vector when one is loaded.
	PresetTrained = "trained"
)

// DefaultPreset is used when a caller does not name a preset or names an
// unknown one.
const DefaultPreset = PresetBalanced

// DefaultWeights returns the balanced preset, the fallback vector for all
// calibration failures.
//
// Formula: raw = area*0.24 + similarity*0.16 + success*0.18 + geo*0.12 +
// qualification*0.12 + maturity*0.08 + review*0.10.
// Prioritizes practice-area fit, with semantic similarity and verified
// track record as the strongest secondary signals. CapacityFit carries no
// weight here: under the balanced preset, current load reaches the ranking
// only through the equity multiplier, so two candidates differing solely
// in cases_last_30_days hold identical raw scores.
func DefaultWeights() Weights {
	return Weights{
		AreaMatch:      0.24,
		CaseSimilarity: 0.16,
		SuccessRate:    0.18,
		GeoProximity:   0.12,
		Qualification:  0.12,
		Maturity:       0.08,
		Review:         0.10,
		CapacityFit:    0.00,
	}
}

// presets holds the named built-in weight vectors.
//
//   - balanced: general-purpose default (see DefaultWeights); load shows
//     only through equity.
//   - fast: urgent cases; proximity and spare capacity dominate.
//   - expert: complex cases; expertise, similarity and credentials dominate,
//     geography nearly ignored.
//   - b2b: corporate clients; maturity and reputation signals weigh more.
var presets = map[string]Weights{
	PresetBalanced: DefaultWeights(),
	PresetFast: {
		AreaMatch:      0.20,
		CaseSimilarity: 0.08,
		SuccessRate:    0.12,
		GeoProximity:   0.22,
		Qualification:  0.08,
		Maturity:       0.06,
		Review:         0.08,
		CapacityFit:    0.16,
	},
	PresetExpert: {
		AreaMatch:      0.26,
		CaseSimilarity: 0.22,
		SuccessRate:    0.18,
		GeoProximity:   0.04,
		Qualification:  0.16,
		Maturity:       0.08,
		Review:         0.06,
		CapacityFit:    0.00,
	},
	PresetB2B: {
		AreaMatch:      0.20,
		CaseSimilarity: 0.14,
		SuccessRate:    0.16,
		GeoProximity:   0.06,
		Qualification:  0.12,
		Maturity:       0.14,
		Review:         0.12,
		CapacityFit:    0.06,
	},
}

// PresetWeights returns the named preset and whether it exists. The returned
// struct is a copy; mutating it does not affect the preset table.
func PresetWeights(name string) (Weights, bool) {
	w, ok := presets[name]
	return w, ok
}

// PresetNames returns the built-in preset names in canonical order.
func PresetNames() []string {
	return []string{PresetBalanced, PresetFast, PresetExpert, PresetB2B}
}

// Map returns the vector as a feature-key map, the representation carried
// in score breakdowns and in the calibration file format.
func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		KeyAreaMatch:      w.AreaMatch,
		KeyCaseSimilarity: w.CaseSimilarity,
		KeySuccessRate:    w.SuccessRate,
		KeyGeoProximity:   w.GeoProximity,
		KeyQualification:  w.Qualification,
		KeyMaturity:       w.Maturity,
		KeyReview:         w.Review,
		KeyCapacityFit:    w.CapacityFit,
	}
}

// get returns the weight for a feature key, 0 for unknown keys.
func (w Weights) get(key string) float64 {
	switch key {
	case KeyAreaMatch:
		return w.AreaMatch
	case KeyCaseSimilarity:
		return w.CaseSimilarity
	case KeySuccessRate:
		return w.SuccessRate
	case KeyGeoProximity:
		return w.GeoProximity
	case KeyQualification:
		return w.Qualification
	case KeyMaturity:
		return w.Maturity
	case KeyReview:
		return w.Review
	case KeyCapacityFit:
		return w.CapacityFit
	}
	return 0
}

// set assigns the weight for a feature key; unknown keys are ignored.
func (w *Weights) set(key string, v float64) {
	switch key {
	case KeyAreaMatch:
		w.AreaMatch = v
	case KeyCaseSimilarity:
		w.CaseSimilarity = v
	case KeySuccessRate:
		w.SuccessRate = v
	case KeyGeoProximity:
		w.GeoProximity = v
	case KeyQualification:
		w.Qualification = v
	case KeyMaturity:
		w.Maturity = v
	case KeyReview:
		w.Review = v
	case KeyCapacityFit:
		w.CapacityFit = v
	}
}
