package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"syndicate-ops/game"
)

func main() {
	seedFlag := flag.Int64("seed", 0, "seed for rng (0 picks one)")
	rosterFlag := flag.String("roster", "", "roster YAML file (built-in roster when empty)")
	flag.Parse()

	rng, err := game.NewRand(*seedFlag)
	if err != nil {
		log.Fatalf("seed rng: %v", err)
	}
	st, err := game.NewStateFromRosterPath(*rosterFlag)
	if err != nil {
		log.Fatalf("load roster: %v", err)
	}

	c := newConsole(st, rng, os.Stdout)
	c.printStatus()
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if line != "" && !c.execute(line) {
			return
		}
		if err != nil {
			return
		}
	}
}
