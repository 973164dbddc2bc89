// Package game holds the in-memory model of the host game the automation drives.
//
// State implements every collaborator the cure loop needs. Travel and dungeon
// commands are applied right away and recorded, so callers can see what the
// automation asked the game to do.
package game

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// maxLogEntries bounds the recorded commands and notices.
const maxLogEntries = 100

// State is the game model. It is safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	logger *slog.Logger

	party      map[string]*automation.PartyPokemon
	partyOrder []string
	region     automation.Region

	routes   []automation.Route
	dungeons []automation.Dungeon
	weather  map[automation.Region]automation.WeatherType
	flags    mapset.Set[string]

	balls    map[automation.Pokeball]int
	tokens   int
	keyItems mapset.Set[string]
	stock    automation.Vitamins

	inInstance bool
	route      *routePosition
	town       string

	contagious automation.Pokeball
	caught     automation.Pokeball
	loadout    cure.Loadout

	dungeonEnabled bool
	dungeonMode    cure.DungeonMode
	features       map[cure.Feature]bool

	allowBeastBall bool
	pokeball       automation.Pokeball
	skipShiny      bool

	commands []string
	notices  []string
}

type routePosition struct {
	number int
	region automation.Region
}

// NewState creates an empty game model.
func NewState(logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &State{
		logger:      logger,
		party:       make(map[string]*automation.PartyPokemon),
		region:      automation.RegionNone,
		weather:     make(map[automation.Region]automation.WeatherType),
		flags:       mapset.New[string](),
		balls:       make(map[automation.Pokeball]int),
		keyItems:    mapset.New[string](),
		contagious:  automation.PokeballNone,
		caught:      automation.PokeballNone,
		dungeonMode: cure.DungeonModeDefault,
		features:    make(map[cure.Feature]bool),
		pokeball:    automation.PokeballUltra,
		skipShiny:   true,
	}
}

// Deps returns the collaborators of the cure loop, all backed by this state.
func (s *State) Deps() cure.Deps {
	return cure.Deps{
		Party:     s,
		World:     s,
		Inventory: s,
		Movement:  s,
		Capture:   s,
		Dungeons:  dungeonAutomation{s},
		Features:  s,
		Notifier:  s,
		Settings:  s,
	}
}

// ============================================
// PARTY
// ============================================

// PokerusState returns the immunity state of a caught pokémon.
func (s *State) PokerusState(name string) (automation.ImmunityState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.party[name]
	if !ok {
		return "", false
	}
	return p.Pokerus, true
}

// SetParty replaces the caught pokémon.
func (s *State) SetParty(party []automation.PartyPokemon) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.party = make(map[string]*automation.PartyPokemon, len(party))
	s.partyOrder = s.partyOrder[:0]
	for _, p := range party {
		if _, dup := s.party[p.Name]; !dup {
			s.partyOrder = append(s.partyOrder, p.Name)
		}
		copied := p
		s.party[p.Name] = &copied
	}
}

// Party returns a copy of the caught pokémon in catch order.
func (s *State) Party() []automation.PartyPokemon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]automation.PartyPokemon, 0, len(s.partyOrder))
	for _, name := range s.partyOrder {
		out = append(out, *s.party[name])
	}
	return out
}

// PartyPokemon returns a single caught pokémon.
func (s *State) PartyPokemon(name string) (automation.PartyPokemon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.party[name]
	if !ok {
		return automation.PartyPokemon{}, false
	}
	return *p, true
}

// SetPokerus updates the immunity state of a caught pokémon.
// It returns false when the pokémon is not caught.
func (s *State) SetPokerus(name string, state automation.ImmunityState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.party[name]
	if !ok {
		return false
	}
	p.Pokerus = state
	return true
}

// SetVitamins sets the vitamins used on a caught pokémon.
func (s *State) SetVitamins(name string, vitamins automation.Vitamins) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.party[name]
	if !ok {
		return false
	}
	p.Vitamins = vitamins
	return true
}

// HighestRegion returns the highest region reached.
func (s *State) HighestRegion() automation.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

// SetHighestRegion records the highest region reached.
func (s *State) SetHighestRegion(region automation.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = region
}

// ============================================
// WORLD
// ============================================

// Routes returns the routes in game order.
func (s *State) Routes() []automation.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.routes)
}

// Dungeons returns the dungeons in game order.
func (s *State) Dungeons() []automation.Dungeon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dungeons)
}

// SetWorld replaces the static location data.
func (s *State) SetWorld(routes []automation.Route, dungeons []automation.Dungeon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = slices.Clone(routes)
	s.dungeons = slices.Clone(dungeons)
}

// Weather returns the current weather of a region.
func (s *State) Weather(region automation.Region) automation.WeatherType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weather[region]
}

// SetWeather sets the current weather of a region.
func (s *State) SetWeather(region automation.Region, weather automation.WeatherType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather[region] = weather
}

// HasFlag reports whether a progress flag is set.
func (s *State) HasFlag(flag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags.Has(flag)
}

// SetFlag sets or clears a progress flag.
func (s *State) SetFlag(flag string, set bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set {
		s.flags.Put(flag)
	} else {
		s.flags.Remove(flag)
	}
}

// ============================================
// INVENTORY
// ============================================

func (s *State) BallQuantity(ball automation.Pokeball) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balls[ball]
}

func (s *State) SetBallQuantity(ball automation.Pokeball, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balls[ball] = quantity
}

func (s *State) DungeonTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

func (s *State) SetDungeonTokens(tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
}

func (s *State) HasKeyItem(item string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyItems.Has(item)
}

func (s *State) SetKeyItem(item string, owned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owned {
		s.keyItems.Put(item)
	} else {
		s.keyItems.Remove(item)
	}
}

// VitaminStock returns the unused vitamins in the player's bag.
func (s *State) VitaminStock() automation.Vitamins {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock
}

func (s *State) SetVitaminStock(stock automation.Vitamins) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = stock
}

// ============================================
// MOVEMENT
// ============================================

// InInstance reports whether the player is inside a dungeon run.
func (s *State) InInstance() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inInstance
}

// SetInInstance is called when the battle engine enters or leaves a dungeon run.
func (s *State) SetInInstance(in bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inInstance = in
}

func (s *State) IsOnRoute(number int, region automation.Region) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route != nil && s.route.number == number && s.route.region == region
}

func (s *State) IsAtTown(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route == nil && s.town == name
}

// MoveToRoute travels to a route.
func (s *State) MoveToRoute(number int, region automation.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = &routePosition{number: number, region: region}
	s.town = ""
	s.record(fmt.Sprintf("travel route %s %d", region, number))
}

// MoveToTown travels to a town.
func (s *State) MoveToTown(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = nil
	s.town = name
	s.record("travel town " + name)
}

// FarmDungeonTokens asks the game to gather dungeon tokens on its own.
func (s *State) FarmDungeonTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("farm dungeon tokens")
}

// Position describes where the player is.
func (s *State) Position() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.inInstance:
		return "dungeon " + s.town
	case s.route != nil:
		return fmt.Sprintf("route %s %d", s.route.region, s.route.number)
	case s.town != "":
		return "town " + s.town
	}
	return "unknown"
}

// ============================================
// CAPTURE
// ============================================

func (s *State) ContagiousSelection() automation.Pokeball {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contagious
}

func (s *State) SetContagiousSelection(ball automation.Pokeball) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contagious = ball
}

func (s *State) CaughtSelection() automation.Pokeball {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caught
}

func (s *State) SetCaughtSelection(ball automation.Pokeball) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caught = ball
}

func (s *State) EquipLoadout(loadout cure.Loadout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadout = loadout
}

// Loadout returns the equipped oak item loadout.
func (s *State) Loadout() cure.Loadout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadout
}

// ============================================
// DUNGEON AUTOMATION & FEATURES
// ============================================

// dungeonAutomation exposes the dungeon automation part of the state.
type dungeonAutomation struct {
	s *State
}

func (d dungeonAutomation) Enabled() bool {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return d.s.dungeonEnabled
}

func (d dungeonAutomation) SetEnabled(enabled bool) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.dungeonEnabled == enabled {
		return
	}
	d.s.dungeonEnabled = enabled
	if enabled {
		d.s.record("dungeon automation on")
	} else {
		d.s.record("dungeon automation off")
	}
}

func (d dungeonAutomation) Mode() cure.DungeonMode {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return d.s.dungeonMode
}

func (d dungeonAutomation) SetMode(mode cure.DungeonMode) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.dungeonMode = mode
}

func (d dungeonAutomation) EndInstance() {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.inInstance = false
	d.s.dungeonEnabled = false
	d.s.record("end instance")
}

// DungeonAutomation reports the dungeon automation toggle and mode.
func (s *State) DungeonAutomation() (bool, cure.DungeonMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dungeonEnabled, s.dungeonMode
}

func (s *State) FeatureEnabled(feature cure.Feature) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.features[feature]
}

func (s *State) SetFeatureEnabled(feature cure.Feature, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[feature] = enabled
}

// ============================================
// SETTINGS
// ============================================

func (s *State) AllowBeastBall() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowBeastBall
}

func (s *State) SetAllowBeastBall(allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowBeastBall = allow
}

// Pokeball returns the ball thrown at regular contagious pokémon.
func (s *State) Pokeball() automation.Pokeball {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pokeball
}

func (s *State) SetPokeball(ball automation.Pokeball) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pokeball = ball
}

// SkipShinyVitamins reports whether shiny pokémon keep their vitamins untouched.
func (s *State) SkipShinyVitamins() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipShiny
}

func (s *State) SetSkipShinyVitamins(skip bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipShiny = skip
}

// ============================================
// NOTIFICATIONS & COMMAND LOG
// ============================================

// Warn shows a warning to the player.
func (s *State) Warn(message string) {
	s.logger.Warn("notification", "message", message)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = appendBounded(s.notices, message)
}

// Commands returns the recorded travel and dungeon commands, oldest first.
func (s *State) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.commands)
}

// Notices returns the recorded notifications, oldest first.
func (s *State) Notices() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notices)
}

// ResetLog clears the recorded commands and notifications.
func (s *State) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = s.commands[:0]
	s.notices = s.notices[:0]
}

// record must be called with the lock held.
func (s *State) record(command string) {
	s.logger.Debug("game command", "command", command)
	s.commands = appendBounded(s.commands, command)
}

func appendBounded(log []string, entry string) []string {
	log = append(log, entry)
	if len(log) > maxLogEntries {
		log = slices.Delete(log, 0, len(log)-maxLogEntries)
	}
	return log
}
