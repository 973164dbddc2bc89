package mcp

import (
	"context"
	"encoding/json"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		bestVitaminsTool(),
		applyVitaminsTool(),
		noArgTool("cure_start", "Start the pokérus cure loop. It travels to the best route or dungeon still holding contagious pokémon and lets captures cure them."),
		noArgTool("cure_stop", "Stop the pokérus cure loop and restore the player's pokéball and dungeon settings."),
		noArgTool("cure_tick", "Run one step of the pokérus cure loop right away."),
		noArgTool("cure_status", "Show the cure loop target, the remaining candidate locations and the recent game commands."),
		needsCuringTool(),
		locationPokemonTool(),
		updatePartyTool(),
		setSettingTool(),
	}
}

func regionProperty(description string) Property {
	minRegion := float64(automation.RegionKanto)
	maxRegion := float64(automation.RegionPaldea)
	return Property{
		Type:        "integer",
		Description: description + " (0 kanto, 1 johto, 2 hoenn, ... 9 paldea)",
		Minimum:     &minRegion,
		Maximum:     &maxRegion,
	}
}

func noArgTool(name, description string) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: JSONSchema{Type: "object"},
	}
}

func bestVitaminsTool() ToolDefinition {
	minZero := 0.0

	return ToolDefinition{
		Name:        "best_vitamins",
		Description: "Find the Protein/Calcium/Carbos split that maximizes breeding efficiency for a pokémon at a progression tier.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"pokemon": {
					Type:        "string",
					Description: "Caught pokémon to read the stats from",
				},
				"base_attack": {
					Type:        "integer",
					Description: "Base attack, ignored when pokemon is set",
					Minimum:     &minZero,
				},
				"egg_cycles": {
					Type:        "integer",
					Description: "Egg cycles, ignored when pokemon is set",
					Minimum:     &minZero,
				},
				"region": regionProperty("Progression tier, defaults to the highest region reached"),
			},
		},
	}
}

func (s *Server) toolBestVitamins(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.BestVitaminsRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.BestVitamins(ctx, req)
}

func applyVitaminsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "apply_vitamins",
		Description: "Move the vitamins of caught pokémon toward their best allocation, within the vitamins in stock.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"pokemon": {
					Type:        "array",
					Description: "Pokémon to update, defaults to the whole party",
					Items:       &Property{Type: "string"},
				},
				"skip_shiny": {
					Type:        "boolean",
					Description: "Leave shiny pokémon untouched, defaults to the skip_shiny_vitamins setting",
				},
			},
		},
	}
}

func (s *Server) toolApplyVitamins(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.ApplyVitaminsRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.ApplyVitamins(ctx, req)
}

func needsCuringTool() ToolDefinition {
	return ToolDefinition{
		Name:        "needs_curing",
		Description: "Check whether any of the given pokémon still needs its pokérus cured, and whether only Ultra Beasts are left to catch.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"pokemon": {
					Type:        "array",
					Description: "Pokémon names",
					Items:       &Property{Type: "string"},
				},
				"only_available_contagious": {
					Type:        "boolean",
					Description: "Only count contagious pokémon that can be caught right now",
					Default:     false,
				},
			},
			Required: []string{"pokemon"},
		},
	}
}

func (s *Server) toolNeedsCuring(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.NeedsCuringRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.NeedsCuring(ctx, req)
}

func locationPokemonTool() ToolDefinition {
	return ToolDefinition{
		Name:        "location_pokemon",
		Description: "List the pokémon of a route or dungeon. Names are matched loosely and close alternatives are suggested.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"name": {
					Type:        "string",
					Description: "Route or dungeon name, e.g. \"Kanto Route 3\", \"route 3\" or \"Mt. Moon\"",
				},
				"region": regionProperty("Only look in this region"),
				"only_available": {
					Type:        "boolean",
					Description: "Leave out pokémon that cannot be encountered right now",
					Default:     false,
				},
			},
			Required: []string{"name"},
		},
	}
}

func (s *Server) toolLocationPokemon(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.LocationPokemonRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.LocationPokemon(ctx, req)
}

func updatePartyTool() ToolDefinition {
	return ToolDefinition{
		Name:        "update_party",
		Description: "Report pokérus changes of caught pokémon, as seen by the battle engine.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"updates": {
					Type:        "array",
					Description: "Immunity changes",
					Items: &Property{
						Type: "object",
						Properties: map[string]Property{
							"name": {Type: "string", Description: "Pokémon name"},
							"pokerus": {
								Type: "string",
								Enum: []string{
									string(automation.PokerusUninfected),
									string(automation.PokerusContagious),
									string(automation.PokerusResistant),
								},
							},
						},
						Required: []string{"name", "pokerus"},
					},
				},
				"persist": {
					Type:        "boolean",
					Description: "Also store the changes in the database",
					Default:     false,
				},
			},
			Required: []string{"updates"},
		},
	}
}

func (s *Server) toolUpdateParty(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.UpdatePartyRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.UpdateParty(ctx, req)
}

func setSettingTool() ToolDefinition {
	return ToolDefinition{
		Name:        "set_setting",
		Description: "Change an automation setting. The change is stored and survives restarts. auto_vitamins keeps applying the best vitamins to the party in the background.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"key": {
					Type: "string",
					Enum: []string{
						automation.SettingAllowBeastBall,
						automation.SettingAutoVitamins,
						automation.SettingPokeball,
						automation.SettingSkipShinyVitamins,
					},
				},
				"value": {
					Type:        "string",
					Description: "\"true\"/\"false\" for toggles, a pokéball name for pokeball",
				},
			},
			Required: []string{"key", "value"},
		},
	}
}

func (s *Server) toolSetSetting(ctx context.Context, args json.RawMessage) (any, error) {
	var req automation.SetSettingRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.SetSetting(ctx, req)
}
