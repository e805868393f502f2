package main

import (
	"bytes"
	"strings"
	"testing"

	"syndicate-ops/game"
)

type scriptedSource struct {
	draws []float64
	used  int
}

func (s *scriptedSource) Float64() float64 {
	if s.used >= len(s.draws) {
		return 0.999
	}
	v := s.draws[s.used]
	s.used++
	return v
}

func newTestConsole(draws ...float64) (*console, *bytes.Buffer) {
	var out bytes.Buffer
	return newConsole(game.NewDefaultState(), &scriptedSource{draws: draws}, &out), &out
}

func TestRegistryMatch(t *testing.T) {
	r := defaultRegistry()
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"status", "status", true},
		{"STATUS", "status", true},
		{"stauts", "status", true},
		{"lanch", "launch", true},
		{"go", "launch", true},
		{"his", "history", true},
		{"spy", "espionage", true},
		{"lay_low", "laylow", true},
		{"q", "quit", true},
		{"?", "help", true},
		{"re", "", false},
		{"xyzzy", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := r.match(tc.input)
		if ok != tc.ok || got.Canonical != tc.want {
			t.Fatalf("match(%q) = %q, %v; want %q, %v", tc.input, got.Canonical, ok, tc.want, tc.ok)
		}
	}
}

func TestLevenshteinLimit(t *testing.T) {
	tests := map[int]int{1: 1, 4: 1, 5: 2, 8: 2, 9: 3, 20: 3}
	for length, want := range tests {
		if got := levenshteinLimit(length); got != want {
			t.Fatalf("levenshteinLimit(%d) = %d, want %d", length, got, want)
		}
	}
}

func TestResolveName(t *testing.T) {
	roster := []string{"Vega", "Kade", "Iris", "Viper"}
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"vega", "Vega", true},
		{"KADE", "Kade", true},
		{"irs", "Iris", true},
		{"vip", "Viper", true},
		{"v", "", false},
		{"ghost", "", false},
	}
	for _, tc := range tests {
		got, ok := resolveName(tc.input, roster)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("resolveName(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	got := splitArgs([]string{"vega,kade", ",", "iris"})
	if strings.Join(got, "|") != "vega|kade|iris" {
		t.Fatalf("splitArgs = %v", got)
	}
}

func TestConsolePlanDoesNotMutate(t *testing.T) {
	c, out := newTestConsole()
	if !c.execute("plan tech vega") {
		t.Fatalf("plan should keep the loop running")
	}
	text := out.String()
	if !strings.Contains(text, "Success chance: 85%") || !strings.Contains(text, "Heat change: +13") || !strings.Contains(text, "Integrity change: -10") {
		t.Fatalf("unexpected preview output:\n%s", text)
	}
	if c.state.Heat != 0 || len(c.state.History) != 0 {
		t.Fatalf("plan must not change the state")
	}
}

func TestConsoleLaunchFuzzyOrder(t *testing.T) {
	c, out := newTestConsole(0.10, 0.99, 0.99)
	c.execute("lanch phys Kade, viper")

	if len(c.state.History) != 1 {
		t.Fatalf("expected one mission, got %d", len(c.state.History))
	}
	res := c.state.History[0]
	if res.MissionType != game.MissionPhysical || res.Outcome != game.OutcomeSuccess {
		t.Fatalf("unexpected result: %+v", res)
	}
	if strings.Join(res.Crew, ",") != "Kade,Viper" {
		t.Fatalf("crew = %v", res.Crew)
	}
	if !strings.Contains(out.String(), "Physical Operation on day 1: Success") {
		t.Fatalf("unexpected launch output:\n%s", out.String())
	}
}

func TestConsoleRejectsUnresolvedInput(t *testing.T) {
	c, out := newTestConsole()
	c.execute("launch heist vega")
	c.execute("launch tech vega ghost")
	c.execute("launch tech")
	c.execute("frobnicate")

	if len(c.state.History) != 0 || c.state.Heat != 0 {
		t.Fatalf("rejected orders must not run")
	}
	text := out.String()
	for _, want := range []string{
		`Unknown mission type "heist".`,
		"Unknown crew: ghost.",
		"Usage: launch <type> <names...>",
		`Unknown command "frobnicate".`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in output:\n%s", want, text)
		}
	}
}

func TestConsoleStateCommands(t *testing.T) {
	c, out := newTestConsole()
	c.state.Heat = 10
	c.state.WarMachine.Integrity = 40
	c.state.Member("Iris").Injury = game.InjuryInjured

	for _, line := range []string{"spy", "hide", "heal", "repair", "advance", "history", "result"} {
		if !c.execute(line) {
			t.Fatalf("%q should not quit", line)
		}
	}
	if c.state.Heat != 0 || c.state.Day != 2 || c.state.WarMachine.Integrity != 100 {
		t.Fatalf("state after commands: day=%d heat=%d integrity=%d", c.state.Day, c.state.Heat, c.state.WarMachine.Integrity)
	}
	if c.state.Member("Iris").Injured() {
		t.Fatalf("heal should clear Iris")
	}
	text := out.String()
	if !strings.Contains(text, "Treated: Iris.") || !strings.Contains(text, "No missions run yet.") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if c.execute("exit") {
		t.Fatalf("exit should stop the loop")
	}
}

func TestConsoleStatusAndHelp(t *testing.T) {
	c, out := newTestConsole()
	c.execute("status")
	c.execute("help")
	text := out.String()
	if !strings.Contains(text, "Credits 1,000") || !strings.Contains(text, "Heat 0 (Cold)") {
		t.Fatalf("unexpected status:\n%s", text)
	}
	if !strings.Contains(text, "plan <type> <names...>") || !strings.Contains(text, "quit") {
		t.Fatalf("help should list commands:\n%s", text)
	}
}
