package match

import (
	"math"
	"testing"
)

// TestEquityWeight tests the fairness multiplier across load levels.
func TestEquityWeight(t *testing.T) {
	tests := []struct {
		name     string
		kpi      KPI
		expected float64
	}{
		{"idle lawyer gets full weight", KPI{CasesLast30Days: 0, MonthlyCapacity: 20}, 1.0},
		{"quarter load stays near 1.0", KPI{CasesLast30Days: 5, MonthlyCapacity: 20}, 0.940625},
		{"half load", KPI{CasesLast30Days: 10, MonthlyCapacity: 20}, 0.05 + 0.95*0.75},
		{"at capacity hits the floor", KPI{CasesLast30Days: 20, MonthlyCapacity: 20}, 0.05},
		{"over capacity hits the floor", KPI{CasesLast30Days: 35, MonthlyCapacity: 20}, 0.05},
		{"negative case count treated as idle", KPI{CasesLast30Days: -2, MonthlyCapacity: 20}, 1.0},
		{"zero capacity degrades to the floor", KPI{CasesLast30Days: 3, MonthlyCapacity: 0}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquityWeight(tt.kpi, DefaultEquityFloor)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("EquityWeight() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

// TestEquityWeightMonotonic verifies the multiplier never increases as load
// grows.
func TestEquityWeightMonotonic(t *testing.T) {
	prev := 1.1
	for cases := 0; cases <= 30; cases++ {
		got := EquityWeight(KPI{CasesLast30Days: cases, MonthlyCapacity: 20}, DefaultEquityFloor)
		if got > prev {
			t.Fatalf("equity increased with load: %f at %d cases, was %f", got, cases, prev)
		}
		if got < DefaultEquityFloor {
			t.Fatalf("equity fell below the floor: %f at %d cases", got, cases)
		}
		prev = got
	}
}

// TestEquityWeightFloorDefault verifies a non-positive floor falls back to
// the package default.
func TestEquityWeightFloorDefault(t *testing.T) {
	got := EquityWeight(KPI{CasesLast30Days: 20, MonthlyCapacity: 20}, 0)
	if got != DefaultEquityFloor {
		t.Errorf("expected default floor %f, got %f", DefaultEquityFloor, got)
	}
}
