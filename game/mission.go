package game

import (
	"math"

	"github.com/google/uuid"
)

type Preview struct {
	SuccessPercent int `json:"projected_success"`
	HeatDelta      int `json:"projected_heat_change"`
	IntegrityDelta int `json:"projected_integrity_change"`
}

// SuccessFraction is the preview's success chance as used by the outcome bands.
func (p Preview) SuccessFraction() float64 {
	return float64(p.SuccessPercent) / 100.0
}

// Preview projects a mission without touching the state.
func (s *State) Preview(kind MissionKind, crew []string) (Preview, error) {
	mt, err := LookupMission(string(kind))
	if err != nil {
		return Preview{}, err
	}
	return s.preview(mt, crew), nil
}

func (s *State) preview(mt MissionType, crew []string) Preview {
	members := s.selectedMembers(crew)

	success := mt.BaseSuccess
	matched := false
	heat := mt.BaseHeat
	for _, m := range members {
		if m.Has(mt.Capability) {
			matched = true
		}
		heat += m.HeatMod
	}
	if matched {
		success += specialtyBonus
	} else {
		success -= specialtyPenalty
	}
	success = math.Max(minSuccess, math.Min(maxSuccess, success))

	return Preview{
		SuccessPercent: int(math.RoundToEven(success * 100)),
		HeatDelta:      heat,
		IntegrityDelta: -mt.IntegrityLoss,
	}
}

// ClassifyOutcome applies the outcome bands to one draw. The bands overlap or
// leave gaps depending on p; that arithmetic is kept as is.
func ClassifyOutcome(p, roll float64) Outcome {
	switch {
	case roll < p*0.75:
		return OutcomeSuccess
	case roll < p+0.25:
		return OutcomeMessySuccess
	default:
		return OutcomeFailure
	}
}

// Resolve commits a mission: heat and integrity move by the preview deltas,
// one draw picks the outcome, then each selected uninjured member rolls for
// injury at the post-mission heat. Callers reject an empty crew beforehand.
func (s *State) Resolve(kind MissionKind, crew []string, rng Source) (MissionResult, error) {
	mt, err := LookupMission(string(kind))
	if err != nil {
		return MissionResult{}, err
	}
	crew = dedupeNames(crew)
	preview := s.preview(mt, crew)

	s.applyHeat(preview.HeatDelta)
	s.applyIntegrity(preview.IntegrityDelta)

	outcome := ClassifyOutcome(preview.SuccessFraction(), rng.Float64())

	injuries := []string{}
	chance := float64(InjuryChance(s.Heat)) / 100.0
	for _, m := range s.selectedMembers(crew) {
		if m.Injured() {
			continue
		}
		if rng.Float64() < chance {
			m.injure()
			injuries = append(injuries, m.Name)
		}
	}

	result := MissionResult{
		ID:             uuid.NewString(),
		Day:            s.Day,
		Outcome:        outcome,
		HeatAfter:      s.Heat,
		IntegrityAfter: s.WarMachine.Integrity,
		Injuries:       injuries,
		MissionType:    mt.Kind,
		MissionLabel:   mt.Label,
		Crew:           append([]string(nil), crew...),
		Preview:        preview,
	}
	s.History = append(s.History, result)
	last := result
	s.LastResult = &last
	s.LastConfig = &MissionConfig{
		MissionType:  mt.Kind,
		SelectedCrew: append([]string(nil), crew...),
		Preview:      preview,
	}
	return result, nil
}
