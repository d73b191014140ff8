package match

// EnforceDiversity caps the number of selected lawyers sharing a firm at
// maxPerFirm, backfilling from pool with the next best-ranked lawyers whose
// firms are under the cap. Both slices must already be in fair-score order;
// the relative order of kept entries is preserved, so the output stays
// sorted. Lawyers without a firm are never capped.
//
// The function is pure and deterministic: the same ranked input and pool
// always yield the same output. maxPerFirm <= 0 disables the cap.
func EnforceDiversity(ranked []ScoreBreakdown, maxPerFirm int, pool []ScoreBreakdown) []ScoreBreakdown {
	if maxPerFirm <= 0 || len(ranked) == 0 {
		return ranked
	}

	limit := len(ranked)
	perFirm := make(map[string]int)
	selected := make(map[string]bool, limit)
	result := make([]ScoreBreakdown, 0, limit)

	for _, b := range ranked {
		if b.FirmID != "" && perFirm[b.FirmID] >= maxPerFirm {
			continue
		}
		if b.FirmID != "" {
			perFirm[b.FirmID]++
		}
		selected[b.LawyerID] = true
		result = append(result, b)
	}

	// Backfill dropped slots from the pool, the ranked remainder beyond
	// the original cut. Every pool score is <= every ranked score, so
	// appending keeps the output sorted.
	for _, b := range pool {
		if len(result) >= limit {
			break
		}
		if selected[b.LawyerID] {
			continue
		}
		if b.FirmID != "" && perFirm[b.FirmID] >= maxPerFirm {
			continue
		}
		if b.FirmID != "" {
			perFirm[b.FirmID]++
		}
		selected[b.LawyerID] = true
		result = append(result, b)
	}

	return result
}
