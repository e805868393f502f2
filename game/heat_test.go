package game

import "testing"

func TestHeatTierThresholds(t *testing.T) {
	tests := []struct {
		heat     int
		tier     HeatTier
		chance   int
		severity string
	}{
		{0, HeatCold, 5, "calm"},
		{9, HeatCold, 5, "calm"},
		{10, HeatWarm, 10, "notice"},
		{24, HeatWarm, 10, "notice"},
		{25, HeatHot, 20, "warning"},
		{44, HeatHot, 20, "warning"},
		{45, HeatSevere, 35, "urgent"},
		{69, HeatSevere, 35, "urgent"},
		{70, HeatCritical, 55, "critical"},
		{1000, HeatCritical, 55, "critical"},
	}

	for _, tc := range tests {
		if got := TierFor(tc.heat); got != tc.tier {
			t.Fatalf("TierFor(%d) = %q, want %q", tc.heat, got, tc.tier)
		}
		if got := InjuryChance(tc.heat); got != tc.chance {
			t.Fatalf("InjuryChance(%d) = %d, want %d", tc.heat, got, tc.chance)
		}
		if got := AdvisoryFor(tc.heat).Severity; got != tc.severity {
			t.Fatalf("AdvisoryFor(%d).Severity = %q, want %q", tc.heat, got, tc.severity)
		}
		risk := RiskFor(tc.heat)
		if risk.Tier != tc.tier || risk.InjuryChance != tc.chance {
			t.Fatalf("RiskFor(%d) = %+v", tc.heat, risk)
		}
	}
}

func TestHeatTierMonotonic(t *testing.T) {
	prev := TierFor(0).Rank()
	for h := 1; h <= 200; h++ {
		rank := TierFor(h).Rank()
		if rank < prev {
			t.Fatalf("tier rank dropped at heat %d: %d -> %d", h, prev, rank)
		}
		prev = rank
	}
	if HeatCritical.Rank() != 4 || HeatCold.Rank() != 0 {
		t.Fatalf("unexpected ranks: cold=%d critical=%d", HeatCold.Rank(), HeatCritical.Rank())
	}
	if HeatTier("Lukewarm").Rank() != -1 {
		t.Fatalf("unknown tier should rank -1")
	}
}

func TestAdvisoryMessages(t *testing.T) {
	if got := AdvisoryFor(3).Message; got != "Heat is low. Operations are safe." {
		t.Fatalf("cold advisory = %q", got)
	}
	if got := AdvisoryFor(90).Message; got != "Exposure critical. Stand down." {
		t.Fatalf("critical advisory = %q", got)
	}
}
