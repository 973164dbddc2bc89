package cure

import (
	"fmt"
	"time"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// fakeGame is a minimal in-memory game used by the cure tests.
type fakeGame struct {
	party    map[string]automation.ImmunityState
	routes   []automation.Route
	dungeons []automation.Dungeon
	weather  map[automation.Region]automation.WeatherType
	flags    map[string]bool

	balls    map[automation.Pokeball]int
	tokens   int
	keyItems map[string]bool

	inInstance bool
	onRoute    string
	atTown     string

	contagious automation.Pokeball
	caught     automation.Pokeball
	loadout    Loadout

	dungeonEnabled bool
	dungeonMode    DungeonMode

	features map[Feature]bool

	allowBeastBall bool
	pokeball       automation.Pokeball

	commands []string
	warnings []string
}

func newFakeGame() *fakeGame {
	return &fakeGame{
		party:       make(map[string]automation.ImmunityState),
		weather:     make(map[automation.Region]automation.WeatherType),
		flags:       make(map[string]bool),
		balls:       map[automation.Pokeball]int{automation.PokeballUltra: 100},
		keyItems:    make(map[string]bool),
		contagious:  automation.PokeballPoke,
		caught:      automation.PokeballGreat,
		dungeonMode: DungeonModeDefault,
		features:    map[Feature]bool{FeatureAutoCatch: true},
		pokeball:    automation.PokeballUltra,
	}
}

func (g *fakeGame) deps() Deps {
	return Deps{
		Party:     g,
		World:     g,
		Inventory: g,
		Movement:  g,
		Capture:   g,
		Dungeons:  g,
		Features:  g,
		Notifier:  g,
		Settings:  g,
	}
}

func (g *fakeGame) PokerusState(name string) (automation.ImmunityState, bool) {
	state, ok := g.party[name]
	return state, ok
}

func (g *fakeGame) Routes() []automation.Route { return g.routes }
func (g *fakeGame) Dungeons() []automation.Dungeon { return g.dungeons }

func (g *fakeGame) Weather(region automation.Region) automation.WeatherType { return g.weather[region] }
func (g *fakeGame) HasFlag(flag string) bool { return g.flags[flag] }

func (g *fakeGame) BallQuantity(ball automation.Pokeball) int { return g.balls[ball] }
func (g *fakeGame) DungeonTokens() int { return g.tokens }
func (g *fakeGame) HasKeyItem(item string) bool { return g.keyItems[item] }

func (g *fakeGame) InInstance() bool { return g.inInstance }

func (g *fakeGame) IsOnRoute(number int, region automation.Region) bool {
	return g.onRoute == routeKey(number, region)
}

func (g *fakeGame) IsAtTown(name string) bool { return g.atTown == name }

func (g *fakeGame) MoveToRoute(number int, region automation.Region) {
	g.onRoute = routeKey(number, region)
	g.atTown = ""
	g.commands = append(g.commands, "route:"+g.onRoute)
}

func (g *fakeGame) MoveToTown(name string) {
	g.atTown = name
	g.onRoute = ""
	g.commands = append(g.commands, "town:"+name)
}

func (g *fakeGame) FarmDungeonTokens() {
	g.commands = append(g.commands, "farm")
}

func (g *fakeGame) ContagiousSelection() automation.Pokeball { return g.contagious }
func (g *fakeGame) SetContagiousSelection(ball automation.Pokeball) { g.contagious = ball }
func (g *fakeGame) CaughtSelection() automation.Pokeball { return g.caught }
func (g *fakeGame) SetCaughtSelection(ball automation.Pokeball) { g.caught = ball }
func (g *fakeGame) EquipLoadout(loadout Loadout) { g.loadout = loadout }

func (g *fakeGame) Enabled() bool { return g.dungeonEnabled }

func (g *fakeGame) SetEnabled(enabled bool) {
	g.dungeonEnabled = enabled
	g.commands = append(g.commands, fmt.Sprintf("dungeon:%t", enabled))
}

func (g *fakeGame) Mode() DungeonMode { return g.dungeonMode }
func (g *fakeGame) SetMode(mode DungeonMode) { g.dungeonMode = mode }

func (g *fakeGame) EndInstance() {
	g.inInstance = false
	g.dungeonEnabled = false
	g.commands = append(g.commands, "end")
}

func (g *fakeGame) FeatureEnabled(feature Feature) bool { return g.features[feature] }

func (g *fakeGame) SetFeatureEnabled(feature Feature, enabled bool) { g.features[feature] = enabled }

func (g *fakeGame) Warn(message string) { g.warnings = append(g.warnings, message) }

func (g *fakeGame) AllowBeastBall() bool { return g.allowBeastBall }
func (g *fakeGame) Pokeball() automation.Pokeball { return g.pokeball }

func routeKey(number int, region automation.Region) string {
	return fmt.Sprintf("%s-%d", region, number)
}

// manualScheduler records scheduling calls; tests call Tick themselves.
type manualScheduler struct {
	started  int
	stopped  int
	interval time.Duration
}

func (s *manualScheduler) Start(interval time.Duration, fn func()) {
	s.started++
	s.interval = interval
}

func (s *manualScheduler) Stop() { s.stopped++ }

func landRoute(region automation.Region, number int, pokemon ...string) automation.Route {
	return automation.Route{
		Region:  region,
		Number:  number,
		Name:    fmt.Sprintf("%s Route %d", region, number),
		Pokemon: &automation.RoutePokemon{Land: pokemon},
	}
}
