package main

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type commandDef struct {
	Canonical string
	Aliases   []string
	MinArgs   int
	Usage     string
}

type commandPhrase struct {
	canonical string
	alias     string
}

type registry struct {
	commands map[string]commandDef
	order    []string
	phrases  []commandPhrase
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]commandDef)}
}

func (r *registry) register(c commandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	r.commands[c.Canonical] = c
	r.order = append(r.order, c.Canonical)
	r.phrases = append(r.phrases, commandPhrase{canonical: c.Canonical, alias: c.Canonical})
	for _, a := range c.Aliases {
		if n := normaliseInput(a); n != "" {
			r.phrases = append(r.phrases, commandPhrase{canonical: c.Canonical, alias: n})
		}
	}
}

func defaultRegistry() *registry {
	r := newRegistry()
	commands := []commandDef{
		{Canonical: "status", Aliases: []string{"s", "stat"}, Usage: "status"},
		{Canonical: "crew", Aliases: []string{"roster", "team"}, Usage: "crew"},
		{Canonical: "plan", Aliases: []string{"preview"}, MinArgs: 1, Usage: "plan <type> <names...>"},
		{Canonical: "launch", Aliases: []string{"run", "go"}, MinArgs: 2, Usage: "launch <type> <names...>"},
		{Canonical: "result", Aliases: []string{"last"}, Usage: "result"},
		{Canonical: "history", Aliases: []string{"hist", "log"}, Usage: "history"},
		{Canonical: "heal", Aliases: []string{"medical", "treat"}, Usage: "heal"},
		{Canonical: "repair", Aliases: []string{"fix"}, Usage: "repair"},
		{Canonical: "laylow", Aliases: []string{"lay_low", "hide"}, Usage: "laylow"},
		{Canonical: "espionage", Aliases: []string{"spy"}, Usage: "espionage"},
		{Canonical: "advance", Aliases: []string{"next", "day"}, Usage: "advance"},
		{Canonical: "help", Aliases: []string{"h", "?", "commands"}, Usage: "help"},
		{Canonical: "quit", Aliases: []string{"q", "exit"}, Usage: "quit"},
	}
	for _, c := range commands {
		r.register(c)
	}
	return r
}

type commandCandidate struct {
	Canonical string
	Score     float64
}

// match resolves one typed verb: exact names and aliases first, then unique
// prefixes, then the closest alias within the edit-distance limit.
func (r *registry) match(word string) (commandDef, bool) {
	word = normaliseInput(word)
	if word == "" {
		return commandDef{}, false
	}
	cands := make([]commandCandidate, 0, len(r.phrases))
	for _, p := range r.phrases {
		switch {
		case p.alias == word:
			score := 1.0
			if p.alias != p.canonical {
				score = 0.97
			}
			cands = append(cands, commandCandidate{p.canonical, score})
		case len(word) >= 2 && strings.HasPrefix(p.alias, word):
			cands = append(cands, commandCandidate{p.canonical, 0.9})
		case len(word) >= 3:
			dist := levenshtein.ComputeDistance(word, p.alias)
			if dist <= levenshteinLimit(len(p.alias)) {
				cands = append(cands, commandCandidate{p.canonical, 0.72 - 0.08*float64(dist)})
			}
		}
	}
	canonical, ok := bestCandidate(cands)
	if !ok {
		return commandDef{}, false
	}
	return r.commands[canonical], true
}

// bestCandidate picks the top score; a different canonical with the same
// score makes the input ambiguous.
func bestCandidate(cands []commandCandidate) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			return cands[i].Canonical < cands[j].Canonical
		}
		return cands[i].Score > cands[j].Score
	})
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Score < best.Score {
			break
		}
		if c.Canonical != best.Canonical {
			return "", false
		}
	}
	return best.Canonical, true
}

// resolveName maps typed input onto one of names with the same rule as
// commands, ignoring case. The returned name keeps its original spelling.
func resolveName(input string, names []string) (string, bool) {
	word := normaliseInput(input)
	if word == "" {
		return "", false
	}
	cands := make([]commandCandidate, 0, len(names))
	for _, name := range names {
		n := normaliseInput(name)
		switch {
		case n == word:
			cands = append(cands, commandCandidate{name, 1.0})
		case len(word) >= 2 && strings.HasPrefix(n, word):
			cands = append(cands, commandCandidate{name, 0.9})
		case len(word) >= 3:
			dist := levenshtein.ComputeDistance(word, n)
			if dist <= levenshteinLimit(len(n)) {
				cands = append(cands, commandCandidate{name, 0.72 - 0.08*float64(dist)})
			}
		}
	}
	return bestCandidate(cands)
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func normaliseInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitArgs accepts names separated by spaces or commas.
func splitArgs(raw []string) []string {
	var out []string
	for _, a := range raw {
		for _, part := range strings.Split(a, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
