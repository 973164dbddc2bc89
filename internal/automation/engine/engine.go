// Package engine contains the automation business logic behind the tools.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/config"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/db"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/game"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/sync"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Engine is the main engine for automation operations. It owns the game model
// and the cure loop driving it.
type Engine struct {
	db       *db.DB
	world    *db.WorldStore
	player   *db.PlayerStore
	settings *db.SettingsStore

	state        *game.State
	loop         *cure.Loop
	autoVitamins *autoVitamins
	cache        *lru.Cache[allocationKey, automation.Allocation]
	logger       *slog.Logger
}

type allocationKey struct {
	baseAttack int
	eggCycles  int
	tier       automation.Region
}

// New creates a new Engine over the database. newScheduler is called once per
// periodic job; nil runs them on real tickers.
func New(database *db.DB, cfg config.Config, newScheduler func() cure.Scheduler, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if newScheduler == nil {
		newScheduler = func() cure.Scheduler { return cure.NewTickerScheduler() }
	}

	cache, err := lru.New[allocationKey, automation.Allocation](cfg.VitaminCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating vitamin cache: %w", err)
	}

	state := game.NewState(logger)
	state.SetPokeball(cfg.Pokeball)
	state.SetAllowBeastBall(cfg.AllowBeastBall)
	state.SetSkipShinyVitamins(cfg.SkipShinyVitamins)

	auto := &autoVitamins{
		scheduler: newScheduler(),
		interval:  cfg.VitaminInterval,
		enabled:   cfg.AutoVitamins,
	}

	return &Engine{
		db:           database,
		world:        db.NewWorldStore(database),
		player:       db.NewPlayerStore(database),
		settings:     db.NewSettingsStore(database),
		state:        state,
		loop:         cure.NewLoop(state.Deps(), cfg.Loop(), newScheduler(), logger),
		autoVitamins: auto,
		cache:        cache,
		logger:       logger,
	}, nil
}

// State returns the game model.
func (e *Engine) State() *game.State {
	return e.state
}

// Load fills the game model from the database. Stored settings override the
// configured ones.
func (e *Engine) Load(ctx context.Context) error {
	routes, err := e.world.LoadRoutes(ctx)
	if err != nil {
		return err
	}
	dungeons, err := e.world.LoadDungeons(ctx)
	if err != nil {
		return err
	}
	e.state.SetWorld(routes, dungeons)

	party, err := e.player.LoadParty(ctx)
	if err != nil {
		return err
	}
	e.state.SetParty(party)

	items, err := e.player.Inventory(ctx)
	if err != nil {
		return err
	}
	for _, ball := range automation.ValidPokeballs() {
		e.state.SetBallQuantity(ball, items[string(ball)])
	}
	e.state.SetDungeonTokens(items[db.ItemDungeonToken])
	e.state.SetVitaminStock(automation.Vitamins{
		Protein: items[db.ItemProtein],
		Calcium: items[db.ItemCalcium],
		Carbos:  items[db.ItemCarbos],
	})

	keyItems, err := e.player.KeyItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range keyItems {
		e.state.SetKeyItem(item, true)
	}

	flags, err := e.player.Flags(ctx)
	if err != nil {
		return err
	}
	for _, flag := range flags {
		e.state.SetFlag(flag, true)
	}

	weather, err := e.player.Weather(ctx)
	if err != nil {
		return err
	}
	for region, w := range weather {
		e.state.SetWeather(region, w)
	}

	highest, err := e.db.GetSyncMetadata(ctx, sync.MetaHighestRegion)
	if err != nil {
		return err
	}
	if highest != "" {
		n, err := strconv.Atoi(highest)
		if err != nil {
			return fmt.Errorf("parsing highest region %q: %w", highest, err)
		}
		e.state.SetHighestRegion(automation.Region(n))
	}

	stored, err := e.settings.All(ctx)
	if err != nil {
		return err
	}
	for key, value := range stored {
		if err := e.applySetting(key, value); err != nil {
			e.logger.Warn("ignoring stored setting", "key", key, "value", value, "error", err)
		}
	}

	e.logger.Info("game model loaded",
		"routes", len(routes),
		"dungeons", len(dungeons),
		"party", len(party),
	)

	if e.AutoVitaminsEnabled() {
		e.StartAutoVitamins()
	}
	return nil
}

// Shutdown stops the periodic jobs and gives the player's settings back.
func (e *Engine) Shutdown() {
	e.loop.Stop()
	e.StopAutoVitamins()
}
