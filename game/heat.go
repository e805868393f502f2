package game

type HeatTier string

const (
	HeatCold     HeatTier = "Cold"
	HeatWarm     HeatTier = "Warm"
	HeatHot      HeatTier = "Hot"
	HeatSevere   HeatTier = "Severe"
	HeatCritical HeatTier = "Critical"
)

type Advisory struct {
	Severity string
	Message  string
}

type Risk struct {
	Tier         HeatTier
	InjuryChance int
}

type heatBand struct {
	tier         HeatTier
	below        int // exclusive upper bound; 0 marks the open top band
	injuryChance int
	advisory     Advisory
}

// heatBands is the only source for tiers, advisories and injury rolls.
var heatBands = []heatBand{
	{HeatCold, 10, 5, Advisory{Severity: "calm", Message: "Heat is low. Operations are safe."}},
	{HeatWarm, 25, 10, Advisory{Severity: "notice", Message: "Minor attention detected."}},
	{HeatHot, 45, 20, Advisory{Severity: "warning", Message: "Heat is rising. Expect resistance."}},
	{HeatSevere, 70, 35, Advisory{Severity: "urgent", Message: "High risk. Injuries likely."}},
	{HeatCritical, 0, 55, Advisory{Severity: "critical", Message: "Exposure critical. Stand down."}},
}

func bandFor(heat int) heatBand {
	for _, b := range heatBands {
		if b.below == 0 || heat < b.below {
			return b
		}
	}
	return heatBands[len(heatBands)-1]
}

func TierFor(heat int) HeatTier {
	return bandFor(heat).tier
}

// InjuryChance is the per-member injury percentage at the given heat.
func InjuryChance(heat int) int {
	return bandFor(heat).injuryChance
}

func AdvisoryFor(heat int) Advisory {
	return bandFor(heat).advisory
}

func RiskFor(heat int) Risk {
	b := bandFor(heat)
	return Risk{Tier: b.tier, InjuryChance: b.injuryChance}
}

// Rank orders tiers from 0 (Cold) to 4 (Critical); unknown tiers rank -1.
func (t HeatTier) Rank() int {
	for i, b := range heatBands {
		if b.tier == t {
			return i
		}
	}
	return -1
}
