// Package match implements the case/lawyer matchmaking core: feature
// extraction, weighted scoring, equity rebalancing, conflict filtering,
// diversity-aware selection and deterministic ranking.
package match

import (
	"errors"

	"github.com/onnwee/lexmatch/internal/geo"
)

// SuccessStatus values describe how much trust the platform places in a
// lawyer's reported success rate.
const (
	// StatusVerified means the success rate was audited against case records.
	StatusVerified = "verified"

	// StatusProvisional means the rate is self-reported and unaudited.
	StatusProvisional = "provisional"

	// StatusNegative means the rate was contradicted by an audit.
	StatusNegative = "negative"
)

// StatusMultiplier maps a success status to the weight applied to the
// reported success rate. Unknown statuses fall back to
// DefaultStatusMultiplier.
var StatusMultiplier = map[string]float64{
	StatusVerified:    1.0,
	StatusProvisional: 0.5,
	StatusNegative:    0.0,
}

// DefaultStatusMultiplier is used when a status is not in StatusMultiplier.
// It matches the provisional weight: unknown provenance is treated as
// unaudited, not as fraudulent.
const DefaultStatusMultiplier = 0.5

// Complexity levels for a case. Optional; empty means unknown.
const (
	ComplexityLow    = "LOW"
	ComplexityMedium = "MEDIUM"
	ComplexityHigh   = "HIGH"
)

// Validation errors for structurally invalid input.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCaseID      = errors.New("case id is required")
	ErrInvalidUrgency     = errors.New("urgency_hours must be positive when set")
	ErrEmbeddingDimension = errors.New("embedding dimensionality does not match deployment constant")
	ErrMissingLawyerID    = errors.New("lawyer id is required")
	ErrInvalidSuccessRate = errors.New("kpi success_rate must be between 0.0 and 1.0")
	ErrInvalidCapacity    = errors.New("kpi monthly_capacity must be positive")
)

// Case represents an incoming service request to be matched with lawyers.
type Case struct {
	ID           string     `json:"id"`
	Area         string     `json:"area"`
	Subarea      string     `json:"subarea,omitempty"`
	UrgencyHours int        `json:"urgency_hours,omitempty"`
	Coordinates  *geo.Point `json:"coordinates,omitempty"`

	// SummaryEmbedding is a fixed-length semantic embedding of the case
	// summary. Dimensionality is fixed per deployment via config.
	SummaryEmbedding []float64 `json:"summary_embedding,omitempty"`

	Complexity string `json:"complexity,omitempty"`

	// Opposing parties and firms drive conflict-of-interest exclusion.
	OpposingPartyIDs []string `json:"opposing_party_ids,omitempty"`
	OpposingFirmIDs  []string `json:"opposing_firm_ids,omitempty"`
}

// KPI holds operating indicators for a lawyer.
type KPI struct {
	SuccessRate          float64 `json:"success_rate"`
	SuccessStatus        string  `json:"success_status"`
	CasesLast30Days      int     `json:"cases_last_30_days"`
	MonthlyCapacity      int     `json:"monthly_capacity"`
	AverageRating        float64 `json:"average_rating"`
	AverageResponseHours float64 `json:"average_response_hours"`
	ActiveCases          int     `json:"active_cases"`
}

// Degree is a postgraduate credential.
type Degree struct {
	Level string `json:"level"` // e.g. "especializacao", "mestrado", "doutorado"
	Area  string `json:"area"`
}

// ResumeData holds structured curriculum information.
type ResumeData struct {
	ExperienceYears int      `json:"experience_years"`
	Degrees         []Degree `json:"degrees,omitempty"`
}

// MaturityData holds professional-maturity signals normalized from an
// external provider payload by a maturity.Adapter.
type MaturityData struct {
	ExperienceYears     int     `json:"experience_years"`
	NetworkStrength     int     `json:"network_strength"`
	ReputationSignals   int     `json:"reputation_signals"`
	ResponsivenessHours float64 `json:"responsiveness_hours"`
}

// Lawyer represents a provider eligible for matching against a case.
type Lawyer struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ExpertiseTags []string   `json:"expertise_tags"`
	Coordinates   *geo.Point `json:"coordinates,omitempty"`
	Resume        ResumeData `json:"resume_data"`
	KPI           KPI        `json:"kpi"`

	SoftSkillScore *float64 `json:"soft_skill_score,omitempty"`
	ReviewTexts    []string `json:"review_texts,omitempty"`

	// Historical embeddings and parallel outcomes drive the semantic
	// case-similarity feature. Outcomes[i] reports whether case i was won.
	HistoricalCaseEmbeddings [][]float64 `json:"historical_case_embeddings,omitempty"`
	HistoricalCaseOutcomes   []bool      `json:"historical_case_outcomes,omitempty"`

	Maturity MaturityData `json:"professional_maturity"`

	FirmID        string   `json:"firm_id,omitempty"`
	HasConflict   bool     `json:"has_conflict"`
	PastClientIDs []string `json:"past_client_ids,omitempty"`
}

// FeatureVector is the ordered set of eight independent sub-scores for one
// lawyer against one case. Every field is clamped to [0, 1].
type FeatureVector struct {
	AreaMatch      float64 `json:"area_match"`      // A
	CaseSimilarity float64 `json:"case_similarity"` // S
	SuccessRate    float64 `json:"success_rate"`    // T
	GeoProximity   float64 `json:"geo_proximity"`   // G
	Qualification  float64 `json:"qualification"`   // Q
	Maturity       float64 `json:"maturity"`        // U
	Review         float64 `json:"review"`          // R
	CapacityFit    float64 `json:"capacity_fit"`    // C
}

// ScoreBreakdown is the full per-lawyer scoring record returned to callers
// for explainability.
type ScoreBreakdown struct {
	LawyerID   string  `json:"lawyer_id"`
	LawyerName string  `json:"lawyer_name,omitempty"`
	FirmID     string  `json:"firm_id,omitempty"`
	RawScore   float64 `json:"raw_score"`
	EquityMult float64 `json:"equity_multiplier"`
	FairScore  float64 `json:"fair_score"`

	Features FeatureVector      `json:"features"`
	Weights  map[string]float64 `json:"weights"`
	Preset   string             `json:"preset"`

	// DegradedMode is set when the live availability check timed out or
	// failed and ranking proceeded without it.
	DegradedMode bool `json:"degraded_mode"`

	// CoarseLocation is a privacy-preserving geohash of the lawyer's
	// location, included for explainability output. Empty when the lawyer
	// has no coordinates.
	CoarseLocation string `json:"coarse_location,omitempty"`
}

// Validate checks a case for structural validity. Only structurally invalid
// input is rejected; optional fields may be absent.
func (c *Case) Validate(embeddingDim int) error {
	if c.ID == "" {
		return ErrMissingCaseID
	}
	if c.UrgencyHours < 0 {
		return ErrInvalidUrgency
	}
	if len(c.SummaryEmbedding) > 0 && embeddingDim > 0 && len(c.SummaryEmbedding) != embeddingDim {
		return ErrEmbeddingDimension
	}
	return nil
}

// Validate checks a lawyer record against the model invariants.
func (l *Lawyer) Validate() error {
	if l.ID == "" {
		return ErrMissingLawyerID
	}
	if l.KPI.SuccessRate < 0.0 || l.KPI.SuccessRate > 1.0 {
		return ErrInvalidSuccessRate
	}
	if l.KPI.MonthlyCapacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}
