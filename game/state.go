package game

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRoster = errors.New("invalid roster")

const (
	startingDay       = 1
	startingCredits   = 1000
	maxIntegrity      = 100
	layLowHeatDrop    = 3
	espionageHeatDrop = 6
)

type WarMachine struct {
	Integrity  int            `json:"integrity"`
	RepairDays int            `json:"repair_days"`
	Upgrades   map[string]int `json:"upgrades"`
}

type Outcome string

const (
	OutcomeSuccess      Outcome = "Success"
	OutcomeMessySuccess Outcome = "Messy Success"
	OutcomeFailure      Outcome = "Failure"
)

type MissionResult struct {
	ID             string      `json:"id"`
	Day            int         `json:"day"`
	Outcome        Outcome     `json:"outcome"`
	HeatAfter      int         `json:"heat_after"`
	IntegrityAfter int         `json:"integrity_after"`
	Injuries       []string    `json:"injuries"`
	MissionType    MissionKind `json:"mission_type"`
	MissionLabel   string      `json:"mission_label"`
	Crew           []string    `json:"crew"`
	Preview        Preview     `json:"preview"`
}

type MissionConfig struct {
	MissionType  MissionKind `json:"mission_type"`
	SelectedCrew []string    `json:"selected_crew"`
	Preview      Preview     `json:"preview"`
}

// State is the whole game for one mode. It is not safe for concurrent use;
// callers serialize access.
type State struct {
	Day        int             `json:"day"`
	Credits    int             `json:"credits"`
	Heat       int             `json:"heat"`
	WarMachine WarMachine      `json:"war_machine"`
	Crew       []CrewMember    `json:"crew"`
	History    []MissionResult `json:"history"`
	LastResult *MissionResult  `json:"last_result,omitempty"`
	LastConfig *MissionConfig  `json:"last_config,omitempty"`
}

// NewState builds a day-one state around a validated copy of roster.
func NewState(roster []CrewMember) (*State, error) {
	crew, err := validateRoster(roster)
	if err != nil {
		return nil, err
	}
	return &State{
		Day:     startingDay,
		Credits: startingCredits,
		Heat:    0,
		WarMachine: WarMachine{
			Integrity: maxIntegrity,
			Upgrades:  map[string]int{},
		},
		Crew:    crew,
		History: []MissionResult{},
	}, nil
}

// Normalize re-applies the invariants NewState establishes to a state that
// came from outside, such as a saved snapshot. The roster must still be valid;
// out of range counters are clamped.
func (s *State) Normalize() error {
	crew, err := validateRoster(s.Crew)
	if err != nil {
		return err
	}
	s.Crew = crew
	s.Day = maxInt(startingDay, s.Day)
	s.Heat = maxInt(0, s.Heat)
	s.WarMachine.Integrity = clampInt(s.WarMachine.Integrity, 0, maxIntegrity)
	if s.WarMachine.Upgrades == nil {
		s.WarMachine.Upgrades = map[string]int{}
	}
	if s.History == nil {
		s.History = []MissionResult{}
	}
	return nil
}

func validateRoster(roster []CrewMember) ([]CrewMember, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: no crew", ErrInvalidRoster)
	}
	seen := map[string]bool{}
	out := make([]CrewMember, 0, len(roster))
	for i, m := range roster {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("%w: crew #%d has no name", ErrInvalidRoster, i+1)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: duplicate crew name %q", ErrInvalidRoster, m.Name)
		}
		seen[m.Name] = true
		if m.Injury != InjuryNone && m.Injury != InjuryInjured {
			return nil, fmt.Errorf("%w: crew %q has unknown injury %q", ErrInvalidRoster, m.Name, m.Injury)
		}
		caps := make([]Capability, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			parsed, err := parseCapability(string(c))
			if err != nil {
				return nil, fmt.Errorf("crew %q: %w", m.Name, err)
			}
			caps = append(caps, parsed)
		}
		m.Capabilities = caps
		if m.Status == "" {
			m.Status = crewStatusActive
		}
		m.Relations = append([]string(nil), m.Relations...)
		out = append(out, m)
	}
	return out, nil
}

// Member returns the roster entry with the given name, or nil.
func (s *State) Member(name string) *CrewMember {
	for i := range s.Crew {
		if s.Crew[i].Name == name {
			return &s.Crew[i]
		}
	}
	return nil
}

func (s *State) InjuredCrew() []CrewMember {
	var out []CrewMember
	for _, m := range s.Crew {
		if m.Injured() {
			out = append(out, m)
		}
	}
	return out
}

// UnknownCrew lists requested names that are not on the roster.
func (s *State) UnknownCrew(names []string) []string {
	var out []string
	for _, n := range names {
		if s.Member(n) == nil {
			out = append(out, n)
		}
	}
	return out
}

// selectedMembers resolves names in selection order, skipping unknown and
// repeated names.
func (s *State) selectedMembers(names []string) []*CrewMember {
	var out []*CrewMember
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if m := s.Member(n); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (s *State) applyHeat(delta int) {
	s.Heat = maxInt(0, s.Heat+delta)
}

func (s *State) applyIntegrity(delta int) {
	s.WarMachine.Integrity = clampInt(s.WarMachine.Integrity+delta, 0, maxIntegrity)
}

func dedupeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
