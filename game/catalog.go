// Package game holds the syndicate simulation rules: the mission catalog, crew
// records, heat tiers and the operations that mutate a State.
package game

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMissionType = errors.New("unknown mission type")

type MissionKind string

const (
	MissionTech     MissionKind = "tech"
	MissionPhysical MissionKind = "physical"
	MissionShadow   MissionKind = "shadow"
)

// MissionType is one fixed catalog entry. MaxCrew is advisory only.
type MissionType struct {
	Kind          MissionKind
	Label         string
	BaseSuccess   float64
	BaseHeat      int
	IntegrityLoss int
	MaxCrew       int
	Capability    Capability
}

const (
	specialtyBonus   = 0.05
	specialtyPenalty = 0.10
	minSuccess       = 0.20
	maxSuccess       = 0.95
)

var catalog = []MissionType{
	{
		Kind:          MissionTech,
		Label:         "Tech Operation",
		BaseSuccess:   0.8,
		BaseHeat:      5,
		IntegrityLoss: 10,
		MaxCrew:       3,
		Capability:    CapabilityTech,
	},
	{
		Kind:          MissionPhysical,
		Label:         "Physical Operation",
		BaseSuccess:   0.65,
		BaseHeat:      12,
		IntegrityLoss: 20,
		MaxCrew:       4,
		Capability:    CapabilityPhysical,
	},
	{
		Kind:          MissionShadow,
		Label:         "Shadow Operation",
		BaseSuccess:   0.6,
		BaseHeat:      -5,
		IntegrityLoss: 5,
		MaxCrew:       2,
		Capability:    CapabilityStealth,
	},
}

// Catalog returns the mission types in display order.
func Catalog() []MissionType {
	out := make([]MissionType, len(catalog))
	copy(out, catalog)
	return out
}

// LookupMission matches the catalog key exactly; form values are expected to
// already be trimmed and lowercased by the caller.
func LookupMission(key string) (MissionType, error) {
	for _, mt := range catalog {
		if string(mt.Kind) == key {
			return mt, nil
		}
	}
	return MissionType{}, fmt.Errorf("%w %q", ErrUnknownMissionType, key)
}

// ParseMissionKind normalizes raw input before the catalog lookup.
func ParseMissionKind(raw string) (MissionKind, error) {
	mt, err := LookupMission(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return "", err
	}
	return mt.Kind, nil
}
