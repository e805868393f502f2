package game

import (
	"fmt"
	"strings"
)

type Capability string

const (
	CapabilityTech     Capability = "tech"
	CapabilityPhysical Capability = "physical"
	CapabilityStealth  Capability = "stealth"
)

type Injury string

const (
	InjuryNone    Injury = ""
	InjuryInjured Injury = "Injured"
)

const (
	crewStatusActive   = "Active"
	injuryRecoveryDays = 3
)

type CrewMember struct {
	Name         string       `json:"name"`
	Injury       Injury       `json:"injury,omitempty"`
	InjuryDays   int          `json:"injury_days"`
	HeatMod      int          `json:"heat_mod"`
	Specialty    string       `json:"specialty"`
	Capabilities []Capability `json:"capabilities"`
	Backstory    string       `json:"backstory,omitempty"`
	Relations    []string     `json:"relations,omitempty"`
	Status       string       `json:"status"`
}

func (c CrewMember) Injured() bool {
	return c.Injury == InjuryInjured
}

func (c CrewMember) Has(capability Capability) bool {
	for _, have := range c.Capabilities {
		if have == capability {
			return true
		}
	}
	return false
}

// specialtyKeywords mirrors the label containment rule the roster was written
// against, so "Tech/Physical (solo/tact)" carries both capabilities.
var specialtyKeywords = []struct {
	keyword    string
	capability Capability
}{
	{"Tech", CapabilityTech},
	{"Physical", CapabilityPhysical},
	{"Stealth", CapabilityStealth},
	{"Shadow", CapabilityStealth},
}

// DeriveCapabilities maps a free-text specialty label to a capability set.
func DeriveCapabilities(specialty string) []Capability {
	var out []Capability
	seen := map[Capability]bool{}
	for _, kw := range specialtyKeywords {
		if strings.Contains(specialty, kw.keyword) && !seen[kw.capability] {
			seen[kw.capability] = true
			out = append(out, kw.capability)
		}
	}
	return out
}

func parseCapability(raw string) (Capability, error) {
	switch Capability(strings.ToLower(strings.TrimSpace(raw))) {
	case CapabilityTech:
		return CapabilityTech, nil
	case CapabilityPhysical:
		return CapabilityPhysical, nil
	case CapabilityStealth, "shadow":
		return CapabilityStealth, nil
	default:
		return "", fmt.Errorf("%w: unknown capability %q", ErrInvalidRoster, raw)
	}
}

func (c *CrewMember) injure() {
	c.Injury = InjuryInjured
	c.InjuryDays = 0
}

func (c *CrewMember) heal() {
	c.Injury = InjuryNone
	c.InjuryDays = 0
}

func (c *CrewMember) recoverOneDay() {
	if !c.Injured() {
		c.InjuryDays = 0
		return
	}
	c.InjuryDays++
	if c.InjuryDays >= injuryRecoveryDays {
		c.heal()
	}
}
