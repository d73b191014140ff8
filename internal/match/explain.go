package match

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Explainer produces a human-readable rationale for a score breakdown.
// Production deployments plug in an LLM-backed implementation; the
// breakdown is passed as structured input so the collaborator never has to
// re-derive scores.
type Explainer interface {
	Explain(ctx context.Context, b ScoreBreakdown) (string, error)
}

// featureLabels maps breakdown feature keys to reader-facing labels.
var featureLabels = map[string]string{
	"area_match":      "practice-area fit",
	"case_similarity": "similarity to past cases",
	"success_rate":    "verified track record",
	"geo_proximity":   "geographic proximity",
	"qualification":   "experience and credentials",
	"maturity":        "professional maturity",
	"review":          "client reviews",
	"capacity_fit":    "capacity and response fit",
}

// TemplateExplainer is the fallback rationale generator used when no
// LLM-backed explainer is configured. It names the strongest weighted
// contributions and the equity adjustment, deterministically.
type TemplateExplainer struct{}

// Explain builds a short rationale from the top weighted feature
// contributions. Never returns an error.
func (TemplateExplainer) Explain(_ context.Context, b ScoreBreakdown) (string, error) {
	type contribution struct {
		key   string
		value float64
	}

	contribs := make([]contribution, 0, len(b.Weights))
	featureMap := map[string]float64{
		"area_match":      b.Features.AreaMatch,
		"case_similarity": b.Features.CaseSimilarity,
		"success_rate":    b.Features.SuccessRate,
		"geo_proximity":   b.Features.GeoProximity,
		"qualification":   b.Features.Qualification,
		"maturity":        b.Features.Maturity,
		"review":          b.Features.Review,
		"capacity_fit":    b.Features.CapacityFit,
	}
	for key, weight := range b.Weights {
		contribs = append(contribs, contribution{key: key, value: featureMap[key] * weight})
	}

	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].key < contribs[j].key
	})

	var reasons []string
	for _, c := range contribs {
		if len(reasons) >= 3 || c.value <= 0 {
			break
		}
		label := featureLabels[c.key]
		if label == "" {
			label = c.key
		}
		reasons = append(reasons, label)
	}

	var sb strings.Builder
	if len(reasons) == 0 {
		fmt.Fprintf(&sb, "%s matched with a fair score of %.2f.", b.LawyerName, b.FairScore)
	} else {
		fmt.Fprintf(&sb, "%s matched with a fair score of %.2f, driven by %s.",
			b.LawyerName, b.FairScore, strings.Join(reasons, ", "))
	}

	if b.EquityMult < 0.5 {
		sb.WriteString(" The score was reduced because the lawyer is near monthly capacity.")
	}
	if b.DegradedMode {
		sb.WriteString(" Live availability could not be confirmed.")
	}

	return sb.String(), nil
}
