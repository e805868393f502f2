package game

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRosterYAML []byte

type rosterFile struct {
	Crew []rosterEntry `yaml:"crew"`
}

type rosterEntry struct {
	Name         string   `yaml:"name"`
	HeatMod      int      `yaml:"heat_mod"`
	Specialty    string   `yaml:"specialty"`
	Capabilities []string `yaml:"capabilities"`
	Backstory    string   `yaml:"backstory"`
	Relations    []string `yaml:"relations"`
	Status       string   `yaml:"status"`
}

// ParseRoster decodes a roster document. Entries without capabilities get
// them from their specialty label.
func ParseRoster(data []byte) ([]CrewMember, error) {
	var doc rosterFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidRoster, err)
	}
	crew := make([]CrewMember, 0, len(doc.Crew))
	for _, e := range doc.Crew {
		m := CrewMember{
			Name:      e.Name,
			HeatMod:   e.HeatMod,
			Specialty: e.Specialty,
			Backstory: e.Backstory,
			Relations: e.Relations,
			Status:    e.Status,
		}
		if len(e.Capabilities) == 0 {
			m.Capabilities = DeriveCapabilities(e.Specialty)
		} else {
			for _, raw := range e.Capabilities {
				c, err := parseCapability(raw)
				if err != nil {
					return nil, fmt.Errorf("crew %q: %w", e.Name, err)
				}
				m.Capabilities = append(m.Capabilities, c)
			}
		}
		crew = append(crew, m)
	}
	return validateRoster(crew)
}

func LoadRosterFile(path string) ([]CrewMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return ParseRoster(data)
}

func DefaultRoster() []CrewMember {
	crew, err := ParseRoster(defaultRosterYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded roster: %v", err))
	}
	return crew
}

// NewDefaultState is a day-one state with the built-in roster.
func NewDefaultState() *State {
	st, err := NewState(DefaultRoster())
	if err != nil {
		panic(fmt.Sprintf("default state: %v", err))
	}
	return st
}

// NewStateFromRosterPath uses the roster file at path, or the built-in one
// when path is empty.
func NewStateFromRosterPath(path string) (*State, error) {
	if path == "" {
		return NewDefaultState(), nil
	}
	crew, err := LoadRosterFile(path)
	if err != nil {
		return nil, err
	}
	return NewState(crew)
}
