package cure

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// ExhaustedMessage is sent when no route nor dungeon is left to cure pokémon on.
const ExhaustedMessage = "No more route, nor dungeon, available to cure pokémon from pokérus.\nTurning the feature off"

// Config tunes the cure loop.
type Config struct {
	TickInterval time.Duration
	MinPokeballs int
}

// DefaultConfig returns the default loop configuration.
func DefaultConfig() Config {
	return Config{
		TickInterval: 10 * time.Second,
		MinPokeballs: 1,
	}
}

// Loop is the periodic pokérus cure controller. Its targeting state only lives
// between Start and Stop.
type Loop struct {
	mu        sync.Mutex
	deps      Deps
	config    Config
	scheduler Scheduler
	logger    *slog.Logger

	running  bool
	session  string
	catalog  *Catalog
	selector *Selector

	// values owned by the loop while running, restored on release
	ballsClaimed        bool
	contagiousToRestore automation.Pokeball
	caughtToRestore     automation.Pokeball
	dungeonClaimed      bool
	enabledToRestore    bool
	modeToRestore       DungeonMode
	autoCatchWasOn      bool

	lastGate string
}

// NewLoop creates a stopped Loop.
func NewLoop(deps Deps, config Config, scheduler Scheduler, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if scheduler == nil {
		scheduler = NewTickerScheduler()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	// A zero threshold would let the loop travel without any ball to throw.
	if config.MinPokeballs < 1 {
		config.MinPokeballs = 1
	}
	return &Loop{
		deps:      deps,
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Running reports whether the loop is started.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start builds a new cure session, schedules the tick and runs it once right away.
// It returns false when the loop is already running.
func (l *Loop) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return false
	}

	eligibility := NewEligibility(l.deps.Party, l.deps.Inventory, l.deps.Settings)
	l.catalog = NewCatalog(l.deps.World, l.deps.Inventory, eligibility)
	l.selector = NewSelector(l.catalog)
	l.session = uuid.NewString()
	l.running = true
	l.lastGate = ""

	l.autoCatchWasOn = l.deps.Features.FeatureEnabled(FeatureAutoCatch)
	l.deps.Features.SetFeatureEnabled(FeatureAutoCatch, false)
	l.deps.Features.SetFeatureEnabled(FeatureAutoClick, true)

	l.logger.Info("pokerus cure started",
		"session", l.session,
		"routes", len(l.catalog.Routes()),
		"dungeons", len(l.catalog.Dungeons()),
	)

	l.scheduler.Start(l.config.TickInterval, l.Tick)
	l.tick()
	return true
}

// Stop ends the session and gives back every setting the loop took over.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stop()
}

func (l *Loop) stop() {
	if !l.running {
		return
	}

	l.scheduler.Stop()
	l.running = false
	l.selector.Reset()

	l.releaseBalls()
	l.releaseDungeonAutomation()
	if l.autoCatchWasOn {
		l.deps.Features.SetFeatureEnabled(FeatureAutoCatch, true)
	}

	l.logger.Info("pokerus cure stopped", "session", l.session)
}

// Tick runs one step of the loop. Every tick issues at most one travel or
// dungeon command, and the next tick reads its outcome from the game state.
func (l *Loop) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick()
}

func (l *Loop) tick() {
	if !l.running {
		return
	}

	// Let a useful dungeon run finish before doing anything else.
	if l.deps.Movement.InInstance() {
		dc := l.selector.Dungeon()
		if dc == nil || !l.catalog.DungeonNeedsCuring(dc, true) {
			l.logger.Debug("ending instance", "session", l.session)
			l.deps.Dungeons.EndInstance()
		}
		return
	}

	state := l.selector.Advance()
	if state == automation.TargetExhausted {
		l.logger.Info("no pokerus cure target left", "session", l.session)
		l.deps.Notifier.Warn(ExhaustedMessage)
		l.stop()
		return
	}

	l.deps.Capture.EquipLoadout(LoadoutPokemonCatch)

	rc, dc := l.selector.Route(), l.selector.Dungeon()
	ball := l.deps.Settings.Pokeball()
	if (rc != nil && rc.NeedsBeastBall) || (dc != nil && dc.NeedsBeastBall) {
		ball = automation.PokeballBeast
	}

	if quantity := l.deps.Inventory.BallQuantity(ball); quantity < l.config.MinPokeballs {
		l.gateFailed("balls", fmt.Sprintf("Not enough %s left to cure pokérus (%s in stock)", ball, humanize.Comma(int64(quantity))))
		l.releaseBalls()
		return
	}

	if dc != nil {
		if tokens := l.deps.Inventory.DungeonTokens(); tokens < dc.Dungeon.TokenCost {
			l.gateFailed("tokens", fmt.Sprintf("Not enough dungeon tokens to enter %s (%s/%s), farming some first",
				dc.Dungeon.Name, humanize.Comma(int64(tokens)), humanize.Comma(int64(dc.Dungeon.TokenCost))))
			l.releaseBalls()
			l.deps.Movement.FarmDungeonTokens()
			return
		}
	}
	l.lastGate = ""

	l.claimBalls(ball)

	if rc != nil {
		l.releaseDungeonAutomation()
		if !l.deps.Movement.IsOnRoute(rc.Route.Number, rc.Route.Region) {
			l.logger.Info("moving to route",
				"session", l.session,
				"route", rc.Route.Name,
				"region", rc.Route.Region.String(),
				"ball", ball,
			)
			l.deps.Movement.MoveToRoute(rc.Route.Number, rc.Route.Region)
		}
		return
	}

	if !l.deps.Movement.IsAtTown(dc.Dungeon.Town) {
		l.logger.Info("moving to dungeon town",
			"session", l.session,
			"dungeon", dc.Dungeon.Name,
			"town", dc.Dungeon.Town,
		)
		// The dungeon menu only shows up on the next tick.
		l.deps.Movement.MoveToTown(dc.Dungeon.Town)
		return
	}

	l.claimDungeonAutomation()
}

// gateFailed warns once per consecutive failure of the same gate.
func (l *Loop) gateFailed(gate, message string) {
	l.logger.Debug("tick aborted", "session", l.session, "gate", gate)
	if l.lastGate == gate {
		return
	}
	l.lastGate = gate
	l.deps.Notifier.Warn(message)
}

// claimBalls throws ball at already caught contagious pokémon and nothing at the other
// already caught ones. The player's selections are saved the first time.
func (l *Loop) claimBalls(ball automation.Pokeball) {
	if !l.ballsClaimed {
		l.contagiousToRestore = l.deps.Capture.ContagiousSelection()
		l.caughtToRestore = l.deps.Capture.CaughtSelection()
		l.ballsClaimed = true
	}
	l.deps.Capture.SetContagiousSelection(ball)
	l.deps.Capture.SetCaughtSelection(automation.PokeballNone)
}

func (l *Loop) releaseBalls() {
	if !l.ballsClaimed {
		return
	}
	l.deps.Capture.SetContagiousSelection(l.contagiousToRestore)
	l.deps.Capture.SetCaughtSelection(l.caughtToRestore)
	l.ballsClaimed = false
}

// claimDungeonAutomation makes the dungeon automation fight every pokémon of the dungeon.
func (l *Loop) claimDungeonAutomation() {
	if l.deps.Dungeons.Enabled() && l.deps.Dungeons.Mode() == DungeonModeFightAllPokemon {
		return
	}
	if !l.dungeonClaimed {
		l.enabledToRestore = l.deps.Dungeons.Enabled()
		l.modeToRestore = l.deps.Dungeons.Mode()
		l.dungeonClaimed = true
	}
	l.logger.Info("starting dungeon automation", "session", l.session, "dungeon", l.selector.Dungeon().Dungeon.Name)
	l.deps.Dungeons.SetMode(DungeonModeFightAllPokemon)
	l.deps.Dungeons.SetEnabled(true)
}

func (l *Loop) releaseDungeonAutomation() {
	if !l.dungeonClaimed {
		return
	}
	l.deps.Dungeons.SetMode(l.modeToRestore)
	l.deps.Dungeons.SetEnabled(l.enabledToRestore)
	l.dungeonClaimed = false
}

// Status is a snapshot of the loop state.
type Status struct {
	Running  bool
	Session  string
	State    automation.TargetState
	Route    *RouteCandidate
	Dungeon  *DungeonCandidate
	Routes   []RouteCandidate
	Dungeons []DungeonCandidate
}

// Status returns a copy of the current session state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := Status{
		Running: l.running,
		Session: l.session,
		State:   automation.TargetIdle,
	}
	if !l.running {
		return status
	}

	status.State = l.selector.State()
	if rc := l.selector.Route(); rc != nil {
		copied := *rc
		status.Route = &copied
	}
	if dc := l.selector.Dungeon(); dc != nil {
		copied := *dc
		status.Dungeon = &copied
	}
	for _, rc := range l.catalog.Routes() {
		status.Routes = append(status.Routes, *rc)
	}
	for _, dc := range l.catalog.Dungeons() {
		status.Dungeons = append(status.Dungeons, *dc)
	}
	return status
}
