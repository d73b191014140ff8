package match

import "testing"

func breakdown(id, firm string, fair float64) ScoreBreakdown {
	return ScoreBreakdown{LawyerID: id, FirmID: firm, FairScore: fair, RawScore: fair}
}

// TestEnforceDiversity tests the per-firm cap with pool backfill.
func TestEnforceDiversity(t *testing.T) {
	t.Run("cap disabled returns input unchanged", func(t *testing.T) {
		ranked := []ScoreBreakdown{breakdown("a", "f1", 0.9), breakdown("b", "f1", 0.8)}
		got := EnforceDiversity(ranked, 0, nil)
		if len(got) != 2 {
			t.Fatalf("expected 2, got %d", len(got))
		}
	})

	t.Run("third lawyer from same firm is replaced", func(t *testing.T) {
		ranked := []ScoreBreakdown{
			breakdown("a", "f1", 0.9),
			breakdown("b", "f1", 0.8),
			breakdown("c", "f1", 0.7),
		}
		pool := []ScoreBreakdown{
			breakdown("d", "f2", 0.6),
			breakdown("e", "f1", 0.5),
		}
		got := EnforceDiversity(ranked, 2, pool)
		if len(got) != 3 {
			t.Fatalf("expected 3, got %d", len(got))
		}
		ids := []string{got[0].LawyerID, got[1].LawyerID, got[2].LawyerID}
		if ids[0] != "a" || ids[1] != "b" || ids[2] != "d" {
			t.Errorf("expected [a b d], got %v", ids)
		}
	})

	t.Run("backfill respects the cap too", func(t *testing.T) {
		ranked := []ScoreBreakdown{
			breakdown("a", "f1", 0.9),
			breakdown("b", "f1", 0.8),
			breakdown("c", "f1", 0.7),
		}
		pool := []ScoreBreakdown{breakdown("e", "f1", 0.5)}
		got := EnforceDiversity(ranked, 2, pool)
		// No eligible replacement exists; result shrinks rather than
		// violating the cap.
		if len(got) != 2 {
			t.Fatalf("expected 2, got %d", len(got))
		}
	})

	t.Run("lawyers without a firm are never capped", func(t *testing.T) {
		ranked := []ScoreBreakdown{
			breakdown("a", "", 0.9),
			breakdown("b", "", 0.8),
			breakdown("c", "", 0.7),
		}
		got := EnforceDiversity(ranked, 1, nil)
		if len(got) != 3 {
			t.Fatalf("expected all 3 solo lawyers kept, got %d", len(got))
		}
	})

	t.Run("output stays sorted by fair score", func(t *testing.T) {
		ranked := []ScoreBreakdown{
			breakdown("a", "f1", 0.9),
			breakdown("b", "f1", 0.8),
			breakdown("c", "f1", 0.7),
			breakdown("d", "f2", 0.65),
		}
		pool := []ScoreBreakdown{
			breakdown("e", "f3", 0.6),
			breakdown("f", "f2", 0.55),
		}
		got := EnforceDiversity(ranked, 2, pool)
		for i := 1; i < len(got); i++ {
			if got[i].FairScore > got[i-1].FairScore {
				t.Fatalf("output not sorted at index %d: %f > %f", i, got[i].FairScore, got[i-1].FairScore)
			}
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		ranked := []ScoreBreakdown{
			breakdown("a", "f1", 0.9),
			breakdown("b", "f1", 0.8),
			breakdown("c", "f1", 0.7),
		}
		pool := []ScoreBreakdown{breakdown("d", "f2", 0.6)}
		first := EnforceDiversity(ranked, 2, pool)
		for i := 0; i < 10; i++ {
			again := EnforceDiversity(ranked, 2, pool)
			if len(again) != len(first) {
				t.Fatal("result length changed between calls")
			}
			for j := range again {
				if again[j].LawyerID != first[j].LawyerID {
					t.Fatalf("result order changed between calls at %d", j)
				}
			}
		}
	})
}
