package cure

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

func newTestLoop(g *fakeGame) (*Loop, *manualScheduler) {
	sched := &manualScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoop(g.deps(), Config{TickInterval: time.Second, MinPokeballs: 1}, sched, logger), sched
}

func TestLoopStartAndStop(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusContagious

	loop, sched := newTestLoop(g)
	if !loop.Start() {
		t.Fatalf("Start() returned false")
	}
	if loop.Start() {
		t.Fatalf("second Start() should report the loop already running")
	}
	if sched.started != 1 || sched.interval != time.Second {
		t.Fatalf("scheduler started=%d interval=%s", sched.started, sched.interval)
	}
	if g.features[FeatureAutoCatch] || !g.features[FeatureAutoClick] {
		t.Fatalf("features during run: %v", g.features)
	}
	if !slices.Equal(g.commands, []string{"route:kanto-1"}) {
		t.Fatalf("commands=%v", g.commands)
	}
	if g.loadout != LoadoutPokemonCatch {
		t.Fatalf("loadout=%q want=%q", g.loadout, LoadoutPokemonCatch)
	}
	if g.contagious != automation.PokeballUltra || g.caught != automation.PokeballNone {
		t.Fatalf("selections during run: contagious=%s caught=%s", g.contagious, g.caught)
	}

	status := loop.Status()
	if !status.Running || status.Session == "" || status.State != automation.TargetRouteActive || status.Route == nil {
		t.Fatalf("unexpected status %+v", status)
	}

	loop.Stop()
	if loop.Running() || sched.stopped != 1 {
		t.Fatalf("expected the loop and its schedule to stop")
	}
	if g.contagious != automation.PokeballPoke || g.caught != automation.PokeballGreat {
		t.Fatalf("selections after stop: contagious=%s caught=%s", g.contagious, g.caught)
	}
	if !g.features[FeatureAutoCatch] {
		t.Fatalf("expected auto catch to be restored")
	}
	if loop.Status().State != automation.TargetIdle {
		t.Fatalf("expected an idle status after stop")
	}
}

func TestLoopTickIsIdempotent(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusContagious

	loop, _ := newTestLoop(g)
	loop.Start()
	for i := 0; i < 5; i++ {
		loop.Tick()
	}

	if !slices.Equal(g.commands, []string{"route:kanto-1"}) {
		t.Fatalf("commands=%v want a single travel", g.commands)
	}
}

func TestLoopAbortsWithoutBalls(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusContagious
	g.balls[automation.PokeballUltra] = 0

	loop, _ := newTestLoop(g)
	loop.Start()
	loop.Tick()
	loop.Tick()

	if len(g.commands) != 0 {
		t.Fatalf("commands=%v want none", g.commands)
	}
	if len(g.warnings) != 1 || !strings.Contains(g.warnings[0], "Ultraball") {
		t.Fatalf("warnings=%v want a single Ultraball warning", g.warnings)
	}
	if g.contagious != automation.PokeballPoke || g.caught != automation.PokeballGreat {
		t.Fatalf("selections should be untouched: contagious=%s caught=%s", g.contagious, g.caught)
	}
	if !loop.Running() {
		t.Fatalf("the loop should keep running")
	}

	g.balls[automation.PokeballUltra] = 20
	loop.Tick()
	if !slices.Equal(g.commands, []string{"route:kanto-1"}) {
		t.Fatalf("commands=%v", g.commands)
	}

	// Running out again while on the route gives the selections back.
	g.balls[automation.PokeballUltra] = 0
	loop.Tick()
	if g.contagious != automation.PokeballPoke {
		t.Fatalf("contagious selection=%s want restored", g.contagious)
	}
	if len(g.warnings) != 2 {
		t.Fatalf("warnings=%v want a second warning", g.warnings)
	}
}

func TestLoopUsesBeastBall(t *testing.T) {
	g := newFakeGame()
	g.allowBeastBall = true
	g.balls[automation.PokeballBeast] = 5
	g.routes = []automation.Route{landRoute(automation.RegionAlola, 1, "Nihilego")}
	g.party["Nihilego"] = automation.PokerusContagious

	loop, _ := newTestLoop(g)
	loop.Start()

	if g.contagious != automation.PokeballBeast {
		t.Fatalf("contagious selection=%s want=%s", g.contagious, automation.PokeballBeast)
	}
}

func TestLoopDungeon(t *testing.T) {
	g := newFakeGame()
	g.tokens = 50
	g.dungeons = []automation.Dungeon{{
		Name:      "Viridian Forest",
		Town:      "Viridian Forest",
		TokenCost: 100,
		Pokemon:   []string{"Caterpie"},
	}}
	g.party["Caterpie"] = automation.PokerusContagious

	loop, _ := newTestLoop(g)
	loop.Start()
	if !slices.Equal(g.commands, []string{"farm"}) {
		t.Fatalf("commands=%v want token farming", g.commands)
	}
	if len(g.warnings) != 1 || !strings.Contains(g.warnings[0], "50/100") {
		t.Fatalf("warnings=%v", g.warnings)
	}

	g.tokens = 1000
	loop.Tick()
	loop.Tick()
	want := []string{"farm", "town:Viridian Forest", "dungeon:true"}
	if !slices.Equal(g.commands, want) {
		t.Fatalf("commands=%v want=%v", g.commands, want)
	}
	if g.dungeonMode != DungeonModeFightAllPokemon {
		t.Fatalf("dungeon mode=%s", g.dungeonMode)
	}

	loop.Tick()
	g.inInstance = true
	loop.Tick()
	if !slices.Equal(g.commands, want) {
		t.Fatalf("commands=%v want no new command", g.commands)
	}

	g.party["Caterpie"] = automation.PokerusResistant
	loop.Tick()
	want = append(want, "end")
	if !slices.Equal(g.commands, want) {
		t.Fatalf("commands=%v want=%v", g.commands, want)
	}

	loop.Tick()
	if loop.Running() {
		t.Fatalf("expected the loop to stop once every location is cured")
	}
	if last := g.warnings[len(g.warnings)-1]; last != ExhaustedMessage {
		t.Fatalf("last warning=%q", last)
	}
	if g.dungeonMode != DungeonModeDefault || g.dungeonEnabled {
		t.Fatalf("dungeon automation not restored: enabled=%v mode=%s", g.dungeonEnabled, g.dungeonMode)
	}
	if g.contagious != automation.PokeballPoke || g.caught != automation.PokeballGreat || !g.features[FeatureAutoCatch] {
		t.Fatalf("player settings not restored")
	}
}

func TestLoopEndsUselessInstance(t *testing.T) {
	g := newFakeGame()
	g.inInstance = true
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusContagious

	loop, _ := newTestLoop(g)
	loop.Start()
	if !slices.Equal(g.commands, []string{"end"}) {
		t.Fatalf("commands=%v want the instance to end", g.commands)
	}

	loop.Tick()
	if !slices.Equal(g.commands, []string{"end", "route:kanto-1"}) {
		t.Fatalf("commands=%v", g.commands)
	}
}

func TestLoopExhaustedOnStart(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusResistant

	loop, sched := newTestLoop(g)
	loop.Start()

	if loop.Running() || sched.stopped != 1 {
		t.Fatalf("expected the loop to stop right away")
	}
	if !slices.Equal(g.warnings, []string{ExhaustedMessage}) {
		t.Fatalf("warnings=%v", g.warnings)
	}
	if len(g.commands) != 0 {
		t.Fatalf("commands=%v want none", g.commands)
	}
}

func TestTickerScheduler(t *testing.T) {
	s := NewTickerScheduler()
	calls := make(chan struct{}, 10)
	s.Start(time.Millisecond, func() {
		select {
		case calls <- struct{}{}:
		default:
		}
	})

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatalf("scheduled function never ran")
	}
	s.Stop()
	s.Stop()
}

func TestLoopZeroBallThresholdStillGates(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 1, "Pidgey")}
	g.party["Pidgey"] = automation.PokerusContagious
	g.balls[automation.PokeballUltra] = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := NewLoop(g.deps(), Config{TickInterval: time.Second, MinPokeballs: 0}, &manualScheduler{}, logger)
	loop.Start()

	if len(g.commands) != 0 {
		t.Fatalf("commands=%v want no travel without balls", g.commands)
	}
	if len(g.warnings) != 1 {
		t.Fatalf("warnings=%v want the ball warning", g.warnings)
	}
}

func TestLoopRestoresPlayerDungeonAutomation(t *testing.T) {
	g := newFakeGame()
	g.tokens = 1000
	g.dungeonEnabled = true
	g.dungeons = []automation.Dungeon{{
		Name:      "Viridian Forest",
		Town:      "Viridian Forest",
		TokenCost: 100,
		Pokemon:   []string{"Caterpie"},
	}}
	g.party["Caterpie"] = automation.PokerusContagious

	loop, _ := newTestLoop(g)
	loop.Start()
	loop.Tick()
	if g.dungeonMode != DungeonModeFightAllPokemon || !g.dungeonEnabled {
		t.Fatalf("dungeon automation not claimed: enabled=%v mode=%s", g.dungeonEnabled, g.dungeonMode)
	}

	loop.Stop()
	if g.dungeonMode != DungeonModeDefault || !g.dungeonEnabled {
		t.Fatalf("dungeon automation not restored: enabled=%v mode=%s", g.dungeonEnabled, g.dungeonMode)
	}
}
