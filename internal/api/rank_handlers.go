package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/onnwee/lexmatch/internal/match"
	"github.com/onnwee/lexmatch/internal/maturity"
	"github.com/onnwee/lexmatch/internal/middleware"
	"github.com/onnwee/lexmatch/internal/ranking"
)

// Request body size limit for ranking requests. Candidate batches with
// embeddings can be large but are still bounded.
const maxRankBodyBytes = 8 << 20 // 8 MB

// RankHandlers holds dependencies for ranking HTTP handlers.
type RankHandlers struct {
	engine    *match.Engine
	explainer match.Explainer
	maturity  maturity.Adapter
	defaults  RankDefaults
}

// RankDefaults carries the deployment-level ranking defaults applied when a
// request leaves them unset.
type RankDefaults struct {
	Preset           string
	TopN             int
	DiversityEnabled bool
	MaxPerFirm       int
}

// NewRankHandlers creates a new RankHandlers instance. A nil explainer
// falls back to the deterministic template explainer; a nil adapter falls
// back to the identity maturity adapter.
func NewRankHandlers(engine *match.Engine, explainer match.Explainer, adapter maturity.Adapter, defaults RankDefaults) *RankHandlers {
	if explainer == nil {
		explainer = match.TemplateExplainer{}
	}
	if adapter == nil {
		adapter = maturity.IdentityAdapter{}
	}
	return &RankHandlers{
		engine:    engine,
		explainer: explainer,
		maturity:  adapter,
		defaults:  defaults,
	}
}

// RankCandidate is one candidate in a ranking request. MaturityRaw, when
// present, is the unconverted payload from the external maturity provider;
// it is normalized by the configured adapter and overrides the candidate's
// professional_maturity block.
type RankCandidate struct {
	match.Lawyer
	MaturityRaw map[string]any `json:"maturity_raw,omitempty"`
}

// RankRequest is the POST /rank request body.
type RankRequest struct {
	Case       match.Case      `json:"case"`
	Candidates []RankCandidate `json:"candidates"`

	// TopN overrides the deployment default when > 0.
	TopN int `json:"top_n,omitempty"`
	// Preset names the weight vector; empty uses the deployment default.
	Preset string `json:"preset,omitempty"`
	// Diversity toggles the same-firm cap; nil uses the deployment default.
	Diversity *bool `json:"diversity,omitempty"`
	// MaxPerFirm overrides the firm cap when > 0.
	MaxPerFirm int `json:"max_per_firm,omitempty"`
}

// RankResponse is the POST /rank response body.
type RankResponse struct {
	Results      []match.ScoreBreakdown `json:"results"`
	Count        int                    `json:"count"`
	Preset       string                 `json:"preset"`
	DegradedMode bool                   `json:"degraded_mode"`
}

// Rank handles POST /rank: scores the candidate lawyers against the case
// and returns the top matches with full score breakdowns.
func (h *RankHandlers) Rank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req RankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRankBodyBytes))
	if err := dec.Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be valid JSON")
		return
	}

	preset := req.Preset
	if preset == "" {
		preset = h.defaults.Preset
	}
	diversity := h.defaults.DiversityEnabled
	if req.Diversity != nil {
		diversity = *req.Diversity
	}
	topN := req.TopN
	if topN <= 0 {
		topN = h.defaults.TopN
	}
	maxPerFirm := req.MaxPerFirm
	if maxPerFirm <= 0 {
		maxPerFirm = h.defaults.MaxPerFirm
	}

	lawyers := make([]match.Lawyer, len(req.Candidates))
	for i, c := range req.Candidates {
		lawyers[i] = c.Lawyer
		if c.MaturityRaw != nil {
			lawyers[i].Maturity = h.maturity.Convert(c.MaturityRaw)
		}
	}

	detail, err := h.engine.RankDetailed(r.Context(), &req.Case, lawyers, match.RankOptions{
		TopN:             topN,
		Preset:           preset,
		DiversityEnabled: diversity,
		MaxPerFirm:       maxPerFirm,
	})
	if err != nil {
		if errors.Is(err, match.ErrInvalidInput) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidInput)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
			return
		}
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		slog.ErrorContext(ctx, "ranking failed", "case_id", req.Case.ID, "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Ranking failed")
		return
	}

	writeJSON(w, r, http.StatusOK, RankResponse{
		Results:      detail.Results,
		Count:        len(detail.Results),
		Preset:       detail.Preset,
		DegradedMode: detail.DegradedMode,
	})
}

// ExplainRequest is the POST /explain request body: a score breakdown as
// returned by POST /rank.
type ExplainRequest struct {
	Breakdown match.ScoreBreakdown `json:"breakdown"`
}

// ExplainResponse is the POST /explain response body.
type ExplainResponse struct {
	LawyerID  string `json:"lawyer_id"`
	Rationale string `json:"rationale"`
}

// Explain handles POST /explain: produces a human-readable rationale for a
// previously returned score breakdown.
func (h *RankHandlers) Explain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req ExplainRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be valid JSON")
		return
	}
	if req.Breakdown.LawyerID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidInput)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidInput, "breakdown.lawyer_id is required")
		return
	}

	rationale, err := h.explainer.Explain(r.Context(), req.Breakdown)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		slog.ErrorContext(ctx, "explanation failed", "lawyer_id", req.Breakdown.LawyerID, "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Explanation failed")
		return
	}

	writeJSON(w, r, http.StatusOK, ExplainResponse{
		LawyerID:  req.Breakdown.LawyerID,
		Rationale: rationale,
	})
}

// PresetResponse describes one selectable weight preset.
type PresetResponse struct {
	Name    string             `json:"name"`
	Weights map[string]float64 `json:"weights"`
	Default bool               `json:"default"`
}

// Presets handles GET /presets: lists the selectable weight presets with
// their vectors.
func (h *RankHandlers) Presets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	names := ranking.PresetNames()
	presets := make([]PresetResponse, 0, len(names))
	for _, name := range names {
		weights, ok := ranking.PresetWeights(name)
		if !ok {
			continue
		}
		presets = append(presets, PresetResponse{
			Name:    name,
			Weights: weights.Map(),
			Default: name == h.defaults.Preset,
		})
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"presets": presets})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
