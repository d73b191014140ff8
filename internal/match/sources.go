package match

import (
	"context"

	"github.com/onnwee/lexmatch/internal/geo"
)

// CandidateFilter narrows the candidate pool fetched from persistence.
// Zero-value fields do not filter.
type CandidateFilter struct {
	// Area restricts to lawyers carrying the expertise tag.
	Area string
	// Center and MaxDistanceKm restrict to a geographic radius.
	Center        *geo.Point
	MaxDistanceKm float64
	// Limit caps the pool size; <= 0 means no cap.
	Limit int
}

// CaseSource fetches case records from persistence. The engine never
// writes; persistence is owned by an external collaborator.
type CaseSource interface {
	FetchCase(ctx context.Context, caseID string) (*Case, error)
}

// CandidateSource fetches eligible lawyer records from persistence.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, filter CandidateFilter) ([]Lawyer, error)
}
