package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"syndicate-ops/game"
)

type console struct {
	state    *game.State
	rng      game.Source
	out      io.Writer
	registry *registry
	printer  *message.Printer
}

func newConsole(st *game.State, rng game.Source, out io.Writer) *console {
	return &console{
		state:    st,
		rng:      rng,
		out:      out,
		registry: defaultRegistry(),
		printer:  message.NewPrinter(language.English),
	}
}

// execute runs one input line and reports whether the loop should continue.
func (c *console) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, ok := c.registry.match(fields[0])
	if !ok {
		fmt.Fprintf(c.out, "Unknown command %q. Type help for a list.\n", fields[0])
		return true
	}
	args := splitArgs(fields[1:])
	if len(args) < cmd.MinArgs {
		fmt.Fprintf(c.out, "Usage: %s\n", cmd.Usage)
		return true
	}

	switch cmd.Canonical {
	case "status":
		c.printStatus()
	case "crew":
		c.printCrew()
	case "plan":
		c.plan(args)
	case "launch":
		c.launch(args)
	case "result":
		c.printResult()
	case "history":
		c.printHistory()
	case "heal":
		if healed := c.state.HealCrew(); len(healed) > 0 {
			fmt.Fprintf(c.out, "Treated: %s.\n", strings.Join(healed, ", "))
		} else {
			fmt.Fprintln(c.out, "Nobody needed treatment.")
		}
	case "repair":
		c.state.RepairWarMachine()
		fmt.Fprintf(c.out, "War machine restored to %d%% integrity.\n", c.state.WarMachine.Integrity)
	case "laylow":
		c.state.LayLow()
		fmt.Fprintf(c.out, "The crew lays low. Heat is now %d.\n", c.state.Heat)
	case "espionage":
		c.state.Espionage()
		fmt.Fprintf(c.out, "Espionage muddies the trail. Heat is now %d.\n", c.state.Heat)
	case "advance":
		c.state.AdvanceDay()
		fmt.Fprintf(c.out, "Day %d begins. Heat is now %d.\n", c.state.Day, c.state.Heat)
	case "help":
		c.printHelp()
	case "quit":
		return false
	}
	return true
}

var missionNames = map[string]game.MissionKind{
	"tech":     game.MissionTech,
	"physical": game.MissionPhysical,
	"shadow":   game.MissionShadow,
	"stealth":  game.MissionShadow,
}

// resolveOrder turns "<type> <names...>" into catalog and roster spellings.
// Anything unresolvable is reported and nothing runs.
func (c *console) resolveOrder(args []string) (game.MissionKind, []string, bool) {
	keys := make([]string, 0, len(missionNames))
	for k := range missionNames {
		keys = append(keys, k)
	}
	typed, ok := resolveName(args[0], keys)
	if !ok {
		fmt.Fprintf(c.out, "Unknown mission type %q.\n", args[0])
		return "", nil, false
	}
	kind := missionNames[typed]

	roster := make([]string, len(c.state.Crew))
	for i, m := range c.state.Crew {
		roster[i] = m.Name
	}
	var crew, unknown []string
	for _, raw := range args[1:] {
		name, ok := resolveName(raw, roster)
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		crew = append(crew, name)
	}
	if len(unknown) > 0 {
		fmt.Fprintf(c.out, "Unknown crew: %s.\n", strings.Join(unknown, ", "))
		return "", nil, false
	}
	return kind, crew, true
}

func (c *console) plan(args []string) {
	kind, crew, ok := c.resolveOrder(args)
	if !ok {
		return
	}
	p, err := c.state.Preview(kind, crew)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	fmt.Fprintf(c.out, "%s with %s\n", kind, crewList(crew))
	fmt.Fprintf(c.out, "  Success chance: %d%%\n", p.SuccessPercent)
	fmt.Fprintf(c.out, "  Heat change: %+d\n", p.HeatDelta)
	fmt.Fprintf(c.out, "  Integrity change: %+d\n", p.IntegrityDelta)
}

func (c *console) launch(args []string) {
	kind, crew, ok := c.resolveOrder(args)
	if !ok {
		return
	}
	if len(crew) == 0 {
		fmt.Fprintln(c.out, "Select at least one crew member.")
		return
	}
	res, err := c.state.Resolve(kind, crew, c.rng)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.printMission(res)
}

func (c *console) printStatus() {
	st := c.state
	adv := game.AdvisoryFor(st.Heat)
	fmt.Fprintf(c.out, "Day %d | Credits %s | Heat %d (%s) | Integrity %d%%\n",
		st.Day, c.printer.Sprintf("%d", st.Credits), st.Heat, game.TierFor(st.Heat), st.WarMachine.Integrity)
	fmt.Fprintf(c.out, "[%s] %s Injury risk %d%%.\n", adv.Severity, adv.Message, game.InjuryChance(st.Heat))
}

func (c *console) printCrew() {
	for _, m := range c.state.Crew {
		cond := m.Status
		if m.Injured() {
			cond = fmt.Sprintf("Injured (%dd)", m.InjuryDays)
		}
		fmt.Fprintf(c.out, "- %-6s %-28s heat %+d  %s\n", m.Name, m.Specialty, m.HeatMod, cond)
	}
}

func (c *console) printResult() {
	if c.state.LastResult == nil {
		fmt.Fprintln(c.out, "No missions run yet.")
		return
	}
	c.printMission(*c.state.LastResult)
}

func (c *console) printMission(res game.MissionResult) {
	fmt.Fprintf(c.out, "%s on day %d: %s\n", res.MissionLabel, res.Day, res.Outcome)
	fmt.Fprintf(c.out, "  Crew: %s\n", crewList(res.Crew))
	fmt.Fprintf(c.out, "  Heat %d, integrity %d%%\n", res.HeatAfter, res.IntegrityAfter)
	if len(res.Injuries) > 0 {
		fmt.Fprintf(c.out, "  Injured: %s\n", strings.Join(res.Injuries, ", "))
	}
}

func (c *console) printHistory() {
	if len(c.state.History) == 0 {
		fmt.Fprintln(c.out, "No missions run yet.")
		return
	}
	for i, res := range c.state.History {
		fmt.Fprintf(c.out, "%d. day %d %s (%s): %s\n", i+1, res.Day, res.MissionLabel, crewList(res.Crew), res.Outcome)
	}
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, "Commands:")
	for _, name := range c.registry.order {
		fmt.Fprintf(c.out, "  %s\n", c.registry.commands[name].Usage)
	}
}

func crewList(names []string) string {
	if len(names) == 0 {
		return "nobody"
	}
	return strings.Join(names, ", ")
}
