package match

import (
	"strings"

	"github.com/onnwee/lexmatch/internal/geo"
	"github.com/onnwee/lexmatch/internal/vecmath"
)

// Feature calculation defaults. All are overridable via CalculatorConfig.
const (
	// DefaultMaxRadiusKm is the geographic radius beyond which proximity
	// scores exactly 0.
	DefaultMaxRadiusKm = 50.0

	// DefaultMinReviewChars is the minimum review length for full weight in
	// the text signal; shorter reviews ("ok", "bom") count at reduced
	// weight so they cannot dominate the reputation score.
	DefaultMinReviewChars = 30

	// DefaultExperienceCapYears caps experience normalization; years beyond
	// it stop adding signal.
	DefaultExperienceCapYears = 20

	// DefaultLossOutcomeWeight is the weight applied to historical cases
	// that were lost when averaging semantic similarity. Won cases count at
	// full weight.
	DefaultLossOutcomeWeight = 0.4

	// shortReviewWeight is the contribution of a below-threshold review to
	// the review-count confidence signal.
	shortReviewWeight = 0.25

	// reviewConfidenceTarget is the effective review count at which the
	// text signal saturates.
	reviewConfidenceTarget = 5.0

	// reviewBaselineNoRating is the review feature value when a lawyer has
	// neither reviews nor a rating: a documented low baseline, never a
	// spoofed high score.
	reviewBaselineNoRating = 0.25

	// reviewBaselineRatingOnly scales the normalized rating when no review
	// texts back it up.
	reviewBaselineRatingOnly = 0.3

	// maxRating is the rating scale ceiling used for normalization.
	maxRating = 5.0
)

// CalculatorConfig tunes feature extraction. Zero values fall back to the
// package defaults.
type CalculatorConfig struct {
	MaxRadiusKm        float64
	MinReviewChars     int
	ExperienceCapYears int
	LossOutcomeWeight  float64
}

// Calculator computes per-lawyer feature vectors. All methods are pure and
// total: any well-formed input produces a value in [0, 1], with missing
// data degrading to the documented neutral default instead of an error.
type Calculator struct {
	maxRadiusKm       float64
	minReviewChars    int
	experienceCap     int
	lossOutcomeWeight float64
}

// NewCalculator creates a feature calculator, applying defaults for any
// unset config field.
func NewCalculator(config CalculatorConfig) *Calculator {
	if config.MaxRadiusKm <= 0 {
		config.MaxRadiusKm = DefaultMaxRadiusKm
	}
	if config.MinReviewChars <= 0 {
		config.MinReviewChars = DefaultMinReviewChars
	}
	if config.ExperienceCapYears <= 0 {
		config.ExperienceCapYears = DefaultExperienceCapYears
	}
	if config.LossOutcomeWeight <= 0 {
		config.LossOutcomeWeight = DefaultLossOutcomeWeight
	}
	return &Calculator{
		maxRadiusKm:       config.MaxRadiusKm,
		minReviewChars:    config.MinReviewChars,
		experienceCap:     config.ExperienceCapYears,
		lossOutcomeWeight: config.LossOutcomeWeight,
	}
}

// Features computes the full eight-feature vector for one lawyer against
// one case.
func (c *Calculator) Features(cs *Case, l *Lawyer) FeatureVector {
	return FeatureVector{
		AreaMatch:      c.AreaMatch(cs, l),
		CaseSimilarity: c.CaseSimilarity(cs, l),
		SuccessRate:    c.SuccessRate(l),
		GeoProximity:   c.GeoProximity(cs, l),
		Qualification:  c.Qualification(cs, l),
		Maturity:       c.MaturityScore(l),
		Review:         c.ReviewScore(l),
		CapacityFit:    c.CapacityFit(cs, l),
	}
}

// canonicalArea lowercases and trims a categorical area string for
// comparison.
func canonicalArea(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AreaMatch returns 1.0 if the case area is one of the lawyer's expertise
// tags (case-insensitive, canonicalized), else 0.0.
func (c *Calculator) AreaMatch(cs *Case, l *Lawyer) float64 {
	area := canonicalArea(cs.Area)
	if area == "" {
		return 0.0
	}
	for _, tag := range l.ExpertiseTags {
		if canonicalArea(tag) == area {
			return 1.0
		}
	}
	return 0.0
}

// CaseSimilarity returns the outcome-weighted average cosine similarity
// between the case embedding and the lawyer's historical case embeddings.
// Won cases count at full weight, lost cases at LossOutcomeWeight, so a
// lawyer whose similar cases ended badly scores lower than one who won
// them. Each similarity is clamped to [0, 1] before averaging.
//
// Returns 0.0 when the case has no embedding or the lawyer has no history.
// When outcomes are missing or shorter than the embedding list, the
// uncovered cases count at full weight.
func (c *Calculator) CaseSimilarity(cs *Case, l *Lawyer) float64 {
	if len(cs.SummaryEmbedding) == 0 || len(l.HistoricalCaseEmbeddings) == 0 {
		return 0.0
	}

	var weightedSum, weightTotal float64
	for i, hist := range l.HistoricalCaseEmbeddings {
		sim := vecmath.Clamp01(vecmath.Cosine(cs.SummaryEmbedding, hist))

		weight := 1.0
		if i < len(l.HistoricalCaseOutcomes) && !l.HistoricalCaseOutcomes[i] {
			weight = c.lossOutcomeWeight
		}

		weightedSum += sim * weight
		weightTotal += weight
	}

	if weightTotal == 0 {
		return 0.0
	}
	return vecmath.Clamp01(weightedSum / weightTotal)
}

// SuccessRate returns the lawyer's reported success rate scaled by the
// status multiplier: verified 1.0, provisional 0.5, negative 0.0.
func (c *Calculator) SuccessRate(l *Lawyer) float64 {
	mult, ok := StatusMultiplier[l.KPI.SuccessStatus]
	if !ok {
		mult = DefaultStatusMultiplier
	}
	return vecmath.Clamp01(l.KPI.SuccessRate * mult)
}

// GeoProximity maps haversine distance to a decaying score using a smooth
// quadratic falloff: G = 1 - (d/R)^2 for d < R, exactly 0.0 at and beyond
// the configured max radius R. Returns 0.0 when either side has no
// coordinates.
func (c *Calculator) GeoProximity(cs *Case, l *Lawyer) float64 {
	if cs.Coordinates == nil || l.Coordinates == nil {
		return 0.0
	}

	d := geo.HaversineKm(*cs.Coordinates, *l.Coordinates)
	if d >= c.maxRadiusKm {
		return 0.0
	}

	ratio := d / c.maxRadiusKm
	return vecmath.Clamp01(1.0 - ratio*ratio)
}

// Degree bonus weights for the qualification feature.
const (
	matchingDegreeBonus    = 0.25
	nonMatchingDegreeBonus = 0.08
)

// Qualification combines normalized years of experience with postgraduate
// credentials: degrees in the case area earn a larger bonus than unrelated
// ones. Experience contributes 60%, credentials 40%.
func (c *Calculator) Qualification(cs *Case, l *Lawyer) float64 {
	years := l.Resume.ExperienceYears
	if years < 0 {
		years = 0
	}
	if years > c.experienceCap {
		years = c.experienceCap
	}
	expNorm := float64(years) / float64(c.experienceCap)

	area := canonicalArea(cs.Area)
	var degreeScore float64
	for _, deg := range l.Resume.Degrees {
		if area != "" && canonicalArea(deg.Area) == area {
			degreeScore += matchingDegreeBonus
		} else {
			degreeScore += nonMatchingDegreeBonus
		}
	}
	if degreeScore > 1.0 {
		degreeScore = 1.0
	}

	return vecmath.Clamp01(0.6*expNorm + 0.4*degreeScore)
}

// Maturity component weights.
const (
	maturityExperienceWeight = 0.35
	maturityNetworkWeight    = 0.20
	maturityReputationWeight = 0.25
	maturityResponseWeight   = 0.20

	// Normalization ceilings for raw maturity signals.
	maturityNetworkCap    = 500.0
	maturityReputationCap = 50.0
	maturityResponseScale = 24.0
)

// MaturityScore combines the normalized professional-maturity fields.
// Responsiveness uses a smooth decay in hours; a zero or negative
// responsiveness value means the signal is absent and contributes nothing,
// so an all-zero MaturityData scores 0.0.
func (c *Calculator) MaturityScore(l *Lawyer) float64 {
	m := l.Maturity

	years := m.ExperienceYears
	if years < 0 {
		years = 0
	}
	if years > c.experienceCap {
		years = c.experienceCap
	}
	expNorm := float64(years) / float64(c.experienceCap)

	network := vecmath.Clamp01(float64(m.NetworkStrength) / maturityNetworkCap)
	reputation := vecmath.Clamp01(float64(m.ReputationSignals) / maturityReputationCap)

	var responsiveness float64
	if m.ResponsivenessHours > 0 {
		responsiveness = 1.0 / (1.0 + m.ResponsivenessHours/maturityResponseScale)
	}

	return vecmath.Clamp01(
		maturityExperienceWeight*expNorm +
			maturityNetworkWeight*network +
			maturityReputationWeight*reputation +
			maturityResponseWeight*responsiveness)
}

// ReviewScore aggregates the normalized average rating with a text-based
// confidence signal. Reviews shorter than the configured threshold count
// at reduced weight, suppressing one-word reviews. Confidence saturates at
// an effective count of reviewConfidenceTarget substantive reviews.
//
// Insufficient data degrades to a documented moderate/low baseline:
// rating without texts scores reviewBaselineRatingOnly * normalized rating,
// and no data at all scores reviewBaselineNoRating. The feature never
// defaults high.
func (c *Calculator) ReviewScore(l *Lawyer) float64 {
	ratingNorm := vecmath.Clamp01(l.KPI.AverageRating / maxRating)

	if len(l.ReviewTexts) == 0 {
		if l.KPI.AverageRating > 0 {
			return vecmath.Clamp01(reviewBaselineRatingOnly * ratingNorm)
		}
		return reviewBaselineNoRating
	}

	var effectiveCount float64
	for _, text := range l.ReviewTexts {
		if len(strings.TrimSpace(text)) >= c.minReviewChars {
			effectiveCount += 1.0
		} else {
			effectiveCount += shortReviewWeight
		}
	}

	confidence := effectiveCount / reviewConfidenceTarget
	if confidence > 1.0 {
		confidence = 1.0
	}

	// Low confidence pulls the score toward the rating-only baseline
	// rather than toward zero.
	return vecmath.Clamp01(ratingNorm * (reviewBaselineRatingOnly + (1.0-reviewBaselineRatingOnly)*confidence))
}

// CapacityFit component weights.
const (
	capacitySpareWeight    = 0.6
	capacityResponseWeight = 0.4

	// neutralResponseFit is used when the case carries no urgency
	// requirement and response fit cannot be judged.
	neutralResponseFit = 0.5
)

// CapacityFit reflects whether the lawyer's remaining monthly capacity and
// typical response time fit the case's urgency and complexity. Spare
// capacity contributes 60% and urgency/response fit 40%; a HIGH-complexity
// case halves the score for a lawyer with no spare capacity.
func (c *Calculator) CapacityFit(cs *Case, l *Lawyer) float64 {
	if l.KPI.MonthlyCapacity <= 0 {
		// Guarded by the model invariant; treated as no signal.
		return 0.0
	}

	remaining := l.KPI.MonthlyCapacity - l.KPI.CasesLast30Days
	if remaining < 0 {
		remaining = 0
	}
	spare := float64(remaining) / float64(l.KPI.MonthlyCapacity)

	responseFit := neutralResponseFit
	if cs.UrgencyHours > 0 && l.KPI.AverageResponseHours > 0 {
		if l.KPI.AverageResponseHours <= float64(cs.UrgencyHours) {
			responseFit = 1.0
		} else {
			responseFit = float64(cs.UrgencyHours) / l.KPI.AverageResponseHours
		}
	}

	score := capacitySpareWeight*spare + capacityResponseWeight*responseFit

	if cs.Complexity == ComplexityHigh && remaining == 0 {
		score *= 0.5
	}

	return vecmath.Clamp01(score)
}
