package match

import "slices"

// HasConflict reports whether a lawyer is disqualified from a case by a
// conflict of interest: a self-declared conflict flag, membership in an
// opposing firm, or a past client among the opposing parties.
func HasConflict(cs *Case, l *Lawyer) bool {
	if l.HasConflict {
		return true
	}
	if l.FirmID != "" && slices.Contains(cs.OpposingFirmIDs, l.FirmID) {
		return true
	}
	for _, client := range l.PastClientIDs {
		if slices.Contains(cs.OpposingPartyIDs, client) {
			return true
		}
	}
	return false
}

// FilterEligible returns the lawyers with no conflict of interest against
// the case, preserving input order. The input slice is not modified.
func FilterEligible(cs *Case, lawyers []Lawyer) []Lawyer {
	eligible := make([]Lawyer, 0, len(lawyers))
	for _, l := range lawyers {
		if !HasConflict(cs, &l) {
			eligible = append(eligible, l)
		}
	}
	return eligible
}
