package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRoster(t *testing.T) {
	crew := DefaultRoster()
	if len(crew) != 4 {
		t.Fatalf("expected 4 crew, got %d", len(crew))
	}
	want := map[string]int{"Vega": 8, "Kade": 12, "Iris": 3, "Viper": 4}
	for _, m := range crew {
		if want[m.Name] != m.HeatMod {
			t.Fatalf("%s heat mod = %d, want %d", m.Name, m.HeatMod, want[m.Name])
		}
		if m.Status != "Active" || m.Injured() {
			t.Fatalf("%s should start active and healthy: %+v", m.Name, m)
		}
	}
	viper := crew[3]
	if !viper.Has(CapabilityTech) || !viper.Has(CapabilityPhysical) || viper.Has(CapabilityStealth) {
		t.Fatalf("Viper capabilities = %v", viper.Capabilities)
	}
}

func TestDeriveCapabilities(t *testing.T) {
	tests := []struct {
		specialty string
		want      []Capability
	}{
		{"Tech", []Capability{CapabilityTech}},
		{"Tech/Physical (solo/tact)", []Capability{CapabilityTech, CapabilityPhysical}},
		{"Shadow Runner", []Capability{CapabilityStealth}},
		{"Stealth/Shadow", []Capability{CapabilityStealth}},
		{"Negotiator", nil},
	}
	for _, tc := range tests {
		got := DeriveCapabilities(tc.specialty)
		if len(got) != len(tc.want) {
			t.Fatalf("DeriveCapabilities(%q) = %v, want %v", tc.specialty, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("DeriveCapabilities(%q) = %v, want %v", tc.specialty, got, tc.want)
			}
		}
	}
}

func TestParseRosterDerivesMissingCapabilities(t *testing.T) {
	doc := []byte(`
crew:
  - name: Rook
    heat_mod: 6
    specialty: Physical
  - name: Wren
    heat_mod: 2
    specialty: Courier
    capabilities: [shadow]
`)
	crew, err := ParseRoster(doc)
	if err != nil {
		t.Fatalf("ParseRoster error: %v", err)
	}
	if !crew[0].Has(CapabilityPhysical) {
		t.Fatalf("Rook should derive physical: %v", crew[0].Capabilities)
	}
	if !crew[1].Has(CapabilityStealth) {
		t.Fatalf("Wren shadow capability should map to stealth: %v", crew[1].Capabilities)
	}
}

func TestParseRosterRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "crew: []\n"},
		{"duplicate", "crew:\n  - name: A\n  - name: A\n"},
		{"blank name", "crew:\n  - name: \"  \"\n"},
		{"bad capability", "crew:\n  - name: A\n    capabilities: [charm]\n"},
		{"bad yaml", "crew: [\n"},
	}
	for _, tc := range tests {
		if _, err := ParseRoster([]byte(tc.doc)); !errors.Is(err, ErrInvalidRoster) {
			t.Fatalf("%s: expected ErrInvalidRoster, got %v", tc.name, err)
		}
	}
}

func TestNewStateFromRosterPath(t *testing.T) {
	st, err := NewStateFromRosterPath("")
	if err != nil || len(st.Crew) != 4 {
		t.Fatalf("default roster state: %v", err)
	}

	path := filepath.Join(t.TempDir(), "crew.yaml")
	if err := os.WriteFile(path, []byte("crew:\n  - name: Solo\n    heat_mod: 1\n    specialty: Tech\n"), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	st, err = NewStateFromRosterPath(path)
	if err != nil {
		t.Fatalf("NewStateFromRosterPath error: %v", err)
	}
	if len(st.Crew) != 1 || st.Crew[0].Name != "Solo" || st.Day != 1 || st.Credits != 1000 {
		t.Fatalf("unexpected state: %+v", st)
	}

	if _, err := NewStateFromRosterPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing roster file")
	}
}

func TestNewStateRejectsUnknownInjury(t *testing.T) {
	_, err := NewState([]CrewMember{{Name: "A", Injury: "Broken"}})
	if !errors.Is(err, ErrInvalidRoster) {
		t.Fatalf("expected ErrInvalidRoster, got %v", err)
	}
}

func TestNewRandSeeds(t *testing.T) {
	a, err := NewRand(7)
	if err != nil {
		t.Fatalf("NewRand error: %v", err)
	}
	b, _ := NewRand(7)
	if a.Float64() != b.Float64() {
		t.Fatalf("same seed should replay the same draws")
	}
	if _, err := NewRand(0); err != nil {
		t.Fatalf("NewRand(0) error: %v", err)
	}
}

func TestParseRosterReturnsNormalizedCrew(t *testing.T) {
	crew, err := ParseRoster([]byte("crew:\n  - name: \"  Vega \"\n    specialty: Tech\n"))
	if err != nil {
		t.Fatalf("ParseRoster error: %v", err)
	}
	if crew[0].Name != "Vega" || crew[0].Status != "Active" {
		t.Fatalf("expected trimmed active member, got name=%q status=%q", crew[0].Name, crew[0].Status)
	}
}
