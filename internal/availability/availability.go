// Package availability defines the boundary to the real-time availability
// provider consulted during ranking. The provider is external; this
// package contributes the contract, a hard-timeout wrapper with a single
// retry, and a static implementation for tests and local runs.
package availability

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is the hard deadline for a single availability query.
// The ranking engine degrades rather than block past it.
const DefaultTimeout = 1500 * time.Millisecond

// ErrUnavailable is returned when the provider cannot be reached at all.
var ErrUnavailable = errors.New("availability provider unavailable")

// Checker queries real-time availability for a batch of lawyers.
// The returned map may be partial: absence of an entry means the lawyer's
// availability is unknown, which callers must treat as "not gated", never
// as "unavailable". Implementations must honor ctx cancellation.
type Checker interface {
	CheckAvailability(ctx context.Context, lawyerIDs []string) (map[string]bool, error)
}

// Check queries the checker with a hard timeout, retrying once on failure.
// Returns the availability map and degraded=true when both attempts failed
// or timed out; callers then proceed without live-availability gating.
// A nil checker reports degraded immediately.
func Check(ctx context.Context, checker Checker, lawyerIDs []string, timeout time.Duration) (map[string]bool, bool) {
	if checker == nil {
		return nil, true
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for attempt := 0; attempt < 2; attempt++ {
		if ctx.Err() != nil {
			return nil, true
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := checker.CheckAvailability(attemptCtx, lawyerIDs)
		cancel()

		if err == nil {
			return result, false
		}
	}

	return nil, true
}

// StaticChecker serves a fixed availability map. Used in tests and local
// runs without a live provider.
type StaticChecker struct {
	Available map[string]bool
	// Err, when set, is returned on every call.
	Err error
	// Delay simulates provider latency before responding.
	Delay time.Duration
}

// CheckAvailability returns the static map, honoring ctx cancellation
// during the configured delay.
func (s *StaticChecker) CheckAvailability(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}

	result := make(map[string]bool, len(lawyerIDs))
	for _, id := range lawyerIDs {
		if avail, ok := s.Available[id]; ok {
			result[id] = avail
		}
	}
	return result, nil
}
