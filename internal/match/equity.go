package match

// DefaultEquityFloor is the minimum equity multiplier. Lawyers at or over
// capacity are dampened to the floor, never to zero, so an otherwise strong
// match is demoted rather than excluded.
const DefaultEquityFloor = 0.05

// EquityWeight computes the fairness multiplier for a lawyer's current
// workload. Lawyers with spare capacity receive a multiplier approaching
// 1.0; lawyers at or over capacity receive the floor.
//
// Formula: for load = cases_last_30_days / monthly_capacity,
//
//	equity = floor + (1 - floor) * (1 - min(load, 1)^2)
//
// The quadratic ease keeps lightly loaded lawyers near 1.0 (load 0.25
// yields ~0.94) while dropping steeply as load approaches capacity. The
// function is monotonic non-increasing in load and never divides by zero:
// a non-positive capacity (excluded by the model invariant) degrades to
// the floor.
func EquityWeight(kpi KPI, floor float64) float64 {
	if floor <= 0 {
		floor = DefaultEquityFloor
	}
	if kpi.MonthlyCapacity <= 0 {
		return floor
	}

	load := float64(kpi.CasesLast30Days) / float64(kpi.MonthlyCapacity)
	if load < 0 {
		load = 0
	}
	if load >= 1 {
		return floor
	}

	return floor + (1.0-floor)*(1.0-load*load)
}
