package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"syndicate-ops/game"
)

type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeSandbox  Mode = "sandbox"
)

func parseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeCampaign:
		return ModeCampaign, nil
	case ModeSandbox:
		return ModeSandbox, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

// IndexPath is the status page for the mode. The campaign owns the site root.
func (m Mode) IndexPath() string {
	if m == ModeCampaign {
		return "/"
	}
	return "/" + string(m)
}

func (m Mode) Path(page string) string {
	return "/" + string(m) + "/" + page
}

func (m Mode) Other() Mode {
	if m == ModeCampaign {
		return ModeSandbox
	}
	return ModeCampaign
}

func (m Mode) Label() string {
	if m == ModeCampaign {
		return "Campaign"
	}
	return "Sandbox"
}

// Store owns one mode's game state. Handlers and background jobs hold mu for
// their whole read-modify-write.
type Store struct {
	mu sync.Mutex

	Mode  Mode
	State *game.State
	Toast string

	LastTickAt time.Time
	TickCount  int64

	roster []game.CrewMember
	rng    game.Source
	repo   *SQLRepository
}

func newStore(mode Mode, roster []game.CrewMember, rng game.Source) (*Store, error) {
	st, err := game.NewState(roster)
	if err != nil {
		return nil, fmt.Errorf("%s state: %w", mode, err)
	}
	return &Store{
		Mode:       mode,
		State:      st,
		LastTickAt: time.Now().UTC(),
		roster:     roster,
		rng:        rng,
	}, nil
}

// Stores pairs the two independent modes.
type Stores struct {
	Campaign *Store
	Sandbox  *Store
}

func (s *Stores) ByMode(m Mode) *Store {
	if m == ModeSandbox {
		return s.Sandbox
	}
	return s.Campaign
}

func (s *Stores) All() []*Store {
	return []*Store{s.Campaign, s.Sandbox}
}

// newStores builds both modes from one roster. Each store gets its own
// generator; a fixed seed makes the pair reproducible.
func newStores(roster []game.CrewMember, seed int64) (*Stores, error) {
	campaignRng, err := game.NewRand(seed)
	if err != nil {
		return nil, err
	}
	sandboxSeed := seed
	if seed != 0 {
		sandboxSeed = seed + 1
	}
	sandboxRng, err := game.NewRand(sandboxSeed)
	if err != nil {
		return nil, err
	}

	campaign, err := newStore(ModeCampaign, roster, campaignRng)
	if err != nil {
		return nil, err
	}
	sandbox, err := newStore(ModeSandbox, roster, sandboxRng)
	if err != nil {
		return nil, err
	}
	return &Stores{Campaign: campaign, Sandbox: sandbox}, nil
}

func resetStoreLocked(s *Store) error {
	st, err := game.NewState(s.roster)
	if err != nil {
		return err
	}
	s.State = st
	s.Toast = ""
	s.TickCount = 0
	s.LastTickAt = time.Now().UTC()
	s.persistLocked()
	return nil
}

// runDayTickLocked advances the mode's clock by one day.
func runDayTickLocked(s *Store, now time.Time) {
	s.State.AdvanceDay()
	s.TickCount++
	s.LastTickAt = now
	s.persistLocked()
}

func setToastLocked(s *Store, text string) {
	s.Toast = text
}

func popToastLocked(s *Store) string {
	msg := s.Toast
	s.Toast = ""
	return msg
}
