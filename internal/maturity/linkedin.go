package maturity

import (
	"github.com/onnwee/lexmatch/internal/match"
)

// LinkedInAdapter normalizes professional-network profile payloads of the
// shape the enrichment service returns for LinkedIn-sourced profiles:
//
//	{
//	  "positions": [{"years": 4.0}, ...],
//	  "connections": 850,
//	  "endorsements": 31,
//	  "recommendations": 6,
//	  "avg_reply_time_hours": 5.5
//	}
type LinkedInAdapter struct{}

func (LinkedInAdapter) Name() string { return "linkedin" }

// Convert sums position durations into experience years and folds
// endorsements and recommendations into reputation signals.
// Recommendations weigh triple: they require another professional to write
// prose, not click a button.
func (LinkedInAdapter) Convert(raw map[string]any) match.MaturityData {
	var years float64
	if positions, ok := raw["positions"].([]any); ok {
		for _, p := range positions {
			if pos, ok := p.(map[string]any); ok {
				years += asFloat(pos["years"])
			}
		}
	}

	reputation := asInt(raw["endorsements"]) + 3*asInt(raw["recommendations"])

	return match.MaturityData{
		ExperienceYears:     int(years),
		NetworkStrength:     asInt(raw["connections"]),
		ReputationSignals:   reputation,
		ResponsivenessHours: asFloat(raw["avg_reply_time_hours"]),
	}
}

func init() {
	Register(LinkedInAdapter{})
}
