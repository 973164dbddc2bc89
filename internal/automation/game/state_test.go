package game

import (
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

func newTestState() *State {
	return NewState(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParty(t *testing.T) {
	s := newTestState()
	s.SetParty([]automation.PartyPokemon{
		{Name: "Bulbasaur", Pokerus: automation.PokerusUninfected, BaseAttack: 49, EggCycles: 20},
		{Name: "Charmander", Pokerus: automation.PokerusContagious, BaseAttack: 52, EggCycles: 20},
	})

	if state, ok := s.PokerusState("Charmander"); !ok || state != automation.PokerusContagious {
		t.Fatalf("PokerusState(Charmander)=%s,%v", state, ok)
	}
	if _, ok := s.PokerusState("Squirtle"); ok {
		t.Fatalf("expected Squirtle to be missing")
	}

	if !s.SetPokerus("Bulbasaur", automation.PokerusResistant) {
		t.Fatalf("SetPokerus(Bulbasaur) failed")
	}
	if s.SetPokerus("Squirtle", automation.PokerusResistant) {
		t.Fatalf("SetPokerus(Squirtle) should fail for a missing pokémon")
	}

	party := s.Party()
	if len(party) != 2 || party[0].Name != "Bulbasaur" || party[0].Pokerus != automation.PokerusResistant {
		t.Fatalf("Party()=%+v", party)
	}

	// The returned slice is a copy.
	party[0].Pokerus = automation.PokerusUninfected
	if p, _ := s.PartyPokemon("Bulbasaur"); p.Pokerus != automation.PokerusResistant {
		t.Fatalf("Party() leaked internal state")
	}
}

func TestMovementAndCommands(t *testing.T) {
	s := newTestState()

	s.MoveToRoute(3, automation.RegionKanto)
	if !s.IsOnRoute(3, automation.RegionKanto) || s.IsOnRoute(3, automation.RegionJohto) {
		t.Fatalf("unexpected route position %q", s.Position())
	}

	s.MoveToTown("Pewter City")
	if !s.IsAtTown("Pewter City") || s.IsOnRoute(3, automation.RegionKanto) {
		t.Fatalf("unexpected town position %q", s.Position())
	}

	deps := s.Deps()
	deps.Dungeons.SetEnabled(true)
	deps.Dungeons.SetEnabled(true)
	s.SetInInstance(true)
	deps.Dungeons.EndInstance()

	want := []string{
		"travel route kanto 3",
		"travel town Pewter City",
		"dungeon automation on",
		"end instance",
	}
	if got := s.Commands(); !slices.Equal(got, want) {
		t.Fatalf("Commands()=%v want=%v", got, want)
	}
	if s.InInstance() || deps.Dungeons.Enabled() {
		t.Fatalf("expected the instance to end with the automation off")
	}

	s.ResetLog()
	if len(s.Commands()) != 0 {
		t.Fatalf("expected an empty command log")
	}
}

func TestLogIsBounded(t *testing.T) {
	s := newTestState()
	for i := 0; i < maxLogEntries+10; i++ {
		s.MoveToRoute(i, automation.RegionKanto)
		s.Warn("warning")
	}

	commands := s.Commands()
	if len(commands) != maxLogEntries || commands[0] != "travel route kanto 10" {
		t.Fatalf("len=%d first=%q", len(commands), commands[0])
	}
	if len(s.Notices()) != maxLogEntries {
		t.Fatalf("len(Notices())=%d", len(s.Notices()))
	}
}

func TestFlagsAndKeyItems(t *testing.T) {
	s := newTestState()
	s.SetFlag("ClearedIndigo", true)
	s.SetKeyItem(automation.KeyItemSuperRod, true)
	if !s.HasFlag("ClearedIndigo") || !s.HasKeyItem(automation.KeyItemSuperRod) {
		t.Fatalf("expected flag and key item to be set")
	}
	s.SetFlag("ClearedIndigo", false)
	s.SetKeyItem(automation.KeyItemSuperRod, false)
	if s.HasFlag("ClearedIndigo") || s.HasKeyItem(automation.KeyItemSuperRod) {
		t.Fatalf("expected flag and key item to be cleared")
	}
}

// The state drives a full cure session through the real loop.
func TestCureSession(t *testing.T) {
	s := newTestState()
	s.SetWorld([]automation.Route{
		{Region: automation.RegionKanto, Number: 1, Name: "Route 1", Pokemon: &automation.RoutePokemon{Land: []string{"Pidgey", "Rattata"}}},
		{Region: automation.RegionKanto, Number: 2, Name: "Route 2", Pokemon: &automation.RoutePokemon{Land: []string{"Caterpie"}}},
	}, nil)
	s.SetParty([]automation.PartyPokemon{
		{Name: "Pidgey", Pokerus: automation.PokerusResistant},
		{Name: "Rattata", Pokerus: automation.PokerusResistant},
		{Name: "Caterpie", Pokerus: automation.PokerusContagious},
	})
	s.SetBallQuantity(automation.PokeballUltra, 50)
	s.SetContagiousSelection(automation.PokeballPoke)
	s.SetFeatureEnabled(cure.FeatureAutoCatch, true)

	loop := cure.NewLoop(s.Deps(), cure.Config{TickInterval: time.Hour, MinPokeballs: 1}, &noopScheduler{}, s.logger)
	loop.Start()

	if !s.IsOnRoute(2, automation.RegionKanto) {
		t.Fatalf("position=%q want route 2", s.Position())
	}
	if s.ContagiousSelection() != automation.PokeballUltra || s.Loadout() != cure.LoadoutPokemonCatch {
		t.Fatalf("selection=%s loadout=%s", s.ContagiousSelection(), s.Loadout())
	}

	s.SetPokerus("Caterpie", automation.PokerusResistant)
	loop.Tick()

	if loop.Running() {
		t.Fatalf("expected the loop to stop")
	}
	if notices := s.Notices(); !slices.Equal(notices, []string{cure.ExhaustedMessage}) {
		t.Fatalf("Notices()=%v", notices)
	}
	if s.ContagiousSelection() != automation.PokeballPoke || !s.FeatureEnabled(cure.FeatureAutoCatch) {
		t.Fatalf("player settings not restored")
	}
}

type noopScheduler struct{}

func (noopScheduler) Start(time.Duration, func()) {}
func (noopScheduler) Stop()                       {}
