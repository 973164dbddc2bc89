// Package cure drives the pokérus cure automation: it picks the best route or dungeon
// still holding contagious pokémon, travels there and lets captures cure them.
package cure

import (
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Loadout names an oak item loadout.
type Loadout string

// LoadoutPokemonCatch is the oak item loadout tuned for catching.
const LoadoutPokemonCatch Loadout = "pokemon_catch"

// DungeonMode is the dungeon automation override mode.
type DungeonMode string

const (
	DungeonModeDefault         DungeonMode = "default"
	DungeonModeFightAllPokemon DungeonMode = "fight_all_pokemon"
)

// Feature names an automation toggle shared with other features.
type Feature string

const (
	// FeatureAutoCatch selects pokéballs on its own and conflicts with the cure loop.
	FeatureAutoCatch Feature = "auto_catch"
	// FeatureAutoClick attacks encounters; captures only happen while it runs.
	FeatureAutoClick Feature = "auto_click"
)

// PartyLookup resolves caught pokémon. The boolean is false for pokémon not caught yet.
type PartyLookup interface {
	PokerusState(name string) (automation.ImmunityState, bool)
}

// WorldData exposes the static location data and the live world conditions.
type WorldData interface {
	Routes() []automation.Route
	Dungeons() []automation.Dungeon
	Weather(region automation.Region) automation.WeatherType
	HasFlag(flag string) bool
}

// Inventory exposes the player's item stock.
type Inventory interface {
	BallQuantity(ball automation.Pokeball) int
	DungeonTokens() int
	HasKeyItem(item string) bool
}

// Movement reads and changes the player's position.
type Movement interface {
	InInstance() bool
	IsOnRoute(number int, region automation.Region) bool
	IsAtTown(name string) bool
	MoveToRoute(number int, region automation.Region)
	MoveToTown(name string)
	FarmDungeonTokens()
}

// CaptureConfig controls which pokéballs the battle engine throws.
type CaptureConfig interface {
	ContagiousSelection() automation.Pokeball
	SetContagiousSelection(ball automation.Pokeball)
	CaughtSelection() automation.Pokeball
	SetCaughtSelection(ball automation.Pokeball)
	EquipLoadout(loadout Loadout)
}

// DungeonAutomation controls the dungeon automation feature.
type DungeonAutomation interface {
	Enabled() bool
	SetEnabled(enabled bool)
	Mode() DungeonMode
	SetMode(mode DungeonMode)
	EndInstance()
}

// Features toggles other automation features.
type Features interface {
	FeatureEnabled(feature Feature) bool
	SetFeatureEnabled(feature Feature, enabled bool)
}

// Notifier surfaces messages to the player.
type Notifier interface {
	Warn(message string)
}

// Settings exposes the user configuration read by the loop.
type Settings interface {
	AllowBeastBall() bool
	Pokeball() automation.Pokeball
}

// Deps bundles every collaborator the cure loop talks to.
type Deps struct {
	Party     PartyLookup
	World     WorldData
	Inventory Inventory
	Movement  Movement
	Capture   CaptureConfig
	Dungeons  DungeonAutomation
	Features  Features
	Notifier  Notifier
	Settings  Settings
}
