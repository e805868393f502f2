package game

// AdvanceDay moves the clock forward one day. Heat cools by one and injured
// crew recover; the war machine is untouched.
func (s *State) AdvanceDay() {
	s.Day++
	s.applyHeat(-1)
	for i := range s.Crew {
		s.Crew[i].recoverOneDay()
	}
}

func (s *State) LayLow() {
	s.applyHeat(-layLowHeatDrop)
}

func (s *State) Espionage() {
	s.applyHeat(-espionageHeatDrop)
}

// HealCrew clears every injury and returns who was treated.
func (s *State) HealCrew() []string {
	var healed []string
	for i := range s.Crew {
		if s.Crew[i].Injured() {
			s.Crew[i].heal()
			healed = append(healed, s.Crew[i].Name)
		}
	}
	return healed
}

func (s *State) RepairWarMachine() {
	s.WarMachine.Integrity = maxIntegrity
}
