// Package sync imports game data dumps and player saves into the database.
//
// Dumps come from different game versions and scripts, so field names are
// looked up through a list of known aliases instead of fixed struct tags.
package sync

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/db"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Sync metadata keys.
const (
	MetaGameDataLastSync = "game_data_last_sync"
	MetaRoutesCount      = "routes_count"
	MetaDungeonsCount    = "dungeons_count"
	MetaSaveLastSync     = "save_last_sync"
	MetaPartyCount       = "party_count"
	MetaHighestRegion    = "highest_region"
)

// Syncer imports external JSON data into the database.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// GameDataResult summarizes a game data import.
type GameDataResult struct {
	Routes   int
	Dungeons int
}

// SaveResult summarizes a save import.
type SaveResult struct {
	Party         int
	HighestRegion automation.Region
}

// ImportGameDataFromFile imports routes and dungeons from a JSON file.
func (s *Syncer) ImportGameDataFromFile(ctx context.Context, path string) (GameDataResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameDataResult{}, fmt.Errorf("reading file: %w", err)
	}
	return s.ImportGameData(ctx, data)
}

// ImportGameData imports routes and dungeons from a game data dump.
// Existing routes and dungeons are replaced.
func (s *Syncer) ImportGameData(ctx context.Context, data []byte) (GameDataResult, error) {
	if !gjson.ValidBytes(data) {
		return GameDataResult{}, fmt.Errorf("parsing JSON: invalid document")
	}
	doc := gjson.ParseBytes(data)

	var routes []automation.Route
	field(doc, "routes", "regionRoutes").ForEach(func(_, v gjson.Result) bool {
		routes = append(routes, transformRoute(v))
		return true
	})

	var dungeons []automation.Dungeon
	field(doc, "dungeons", "dungeonList").ForEach(func(key, v gjson.Result) bool {
		dungeons = append(dungeons, transformDungeon(key, v))
		return true
	})

	if err := db.NewWorldStore(s.db).ReplaceWorld(ctx, routes, dungeons); err != nil {
		return GameDataResult{}, fmt.Errorf("inserting world data: %w", err)
	}

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, MetaGameDataLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return GameDataResult{}, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaRoutesCount, strconv.Itoa(len(routes))); err != nil {
		return GameDataResult{}, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaDungeonsCount, strconv.Itoa(len(dungeons))); err != nil {
		return GameDataResult{}, err
	}

	return GameDataResult{Routes: len(routes), Dungeons: len(dungeons)}, nil
}

// ImportSaveFromFile imports the player's progress from a JSON file.
func (s *Syncer) ImportSaveFromFile(ctx context.Context, path string) (SaveResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SaveResult{}, fmt.Errorf("reading file: %w", err)
	}
	return s.ImportSave(ctx, data)
}

// ImportSave imports the player's party, items and world progress from a save dump.
func (s *Syncer) ImportSave(ctx context.Context, data []byte) (SaveResult, error) {
	if !gjson.ValidBytes(data) {
		return SaveResult{}, fmt.Errorf("parsing JSON: invalid document")
	}
	doc := gjson.ParseBytes(data)
	if save := doc.Get("save"); save.IsObject() {
		doc = save
	}

	store := db.NewPlayerStore(s.db)

	var party []automation.PartyPokemon
	field(doc, "party", "caughtPokemon").ForEach(func(_, v gjson.Result) bool {
		if p := transformPartyPokemon(v); p.Name != "" {
			party = append(party, p)
		}
		return true
	})
	if err := store.ReplaceParty(ctx, party); err != nil {
		return SaveResult{}, fmt.Errorf("inserting party: %w", err)
	}

	var err error
	field(doc, "pokeballs", "balls").ForEach(func(key, v gjson.Result) bool {
		ball := automation.Pokeball(key.String())
		if !ball.IsValid() || ball == automation.PokeballNone {
			return true
		}
		err = store.SetItemQuantity(ctx, string(ball), int(v.Int()))
		return err == nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("inserting pokeballs: %w", err)
	}

	if tokens := field(doc, "dungeonTokens", "dungeon_tokens"); tokens.Exists() {
		if err := store.SetItemQuantity(ctx, db.ItemDungeonToken, int(tokens.Int())); err != nil {
			return SaveResult{}, err
		}
	}

	if stock := field(doc, "vitamins", "vitaminStock"); stock.IsObject() {
		v := transformVitamins(stock)
		for item, quantity := range map[string]int{db.ItemProtein: v.Protein, db.ItemCalcium: v.Calcium, db.ItemCarbos: v.Carbos} {
			if err := store.SetItemQuantity(ctx, item, quantity); err != nil {
				return SaveResult{}, err
			}
		}
	}

	if err := store.ReplaceKeyItems(ctx, stringList(field(doc, "keyItems", "key_items"))); err != nil {
		return SaveResult{}, fmt.Errorf("inserting key items: %w", err)
	}
	if err := store.ReplaceFlags(ctx, stringList(field(doc, "flags", "progressFlags"))); err != nil {
		return SaveResult{}, fmt.Errorf("inserting flags: %w", err)
	}

	field(doc, "weather", "regionWeather").ForEach(func(key, v gjson.Result) bool {
		region := parseRegion(key)
		if region == automation.RegionNone {
			return true
		}
		err = store.SetWeather(ctx, region, automation.WeatherType(v.String()))
		return err == nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("inserting weather: %w", err)
	}

	highest := automation.RegionNone
	if r := field(doc, "highestRegion", "highest_region"); r.Exists() {
		highest = parseRegion(r)
	}

	if err := s.db.SetSyncMetadata(ctx, MetaSaveLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return SaveResult{}, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaPartyCount, strconv.Itoa(len(party))); err != nil {
		return SaveResult{}, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaHighestRegion, strconv.Itoa(int(highest))); err != nil {
		return SaveResult{}, err
	}

	return SaveResult{Party: len(party), HighestRegion: highest}, nil
}

// transformRoute converts a route entry to the domain type.
func transformRoute(v gjson.Result) automation.Route {
	route := automation.Route{
		Region:    parseRegion(v.Get("region")),
		SubRegion: int(field(v, "subRegion", "sub_region").Int()),
		Number:    int(v.Get("number").Int()),
		Name:      field(v, "name", "routeName").String(),
	}
	if route.Name == "" {
		route.Name = fmt.Sprintf("%s route %d", route.Region, route.Number)
	}

	pokemon := v.Get("pokemon")
	if !pokemon.IsObject() {
		return route
	}

	pools := &automation.RoutePokemon{
		Land:     stringList(pokemon.Get("land")),
		Water:    stringList(pokemon.Get("water")),
		Headbutt: stringList(pokemon.Get("headbutt")),
	}
	pokemon.Get("special").ForEach(func(_, sp gjson.Result) bool {
		special := automation.SpecialPokemon{Pokemon: stringList(sp.Get("pokemon"))}
		if req := field(sp, "requirement", "req"); req.Exists() {
			special.Requirement = transformRequirement(req)
		}
		pools.Special = append(pools.Special, special)
		return true
	})
	route.Pokemon = pools

	return route
}

// transformDungeon converts a dungeon entry to the domain type. Dungeon lists keyed
// by name are accepted as well as arrays.
func transformDungeon(key, v gjson.Result) automation.Dungeon {
	dungeon := automation.Dungeon{
		Name:      v.Get("name").String(),
		Region:    parseRegion(v.Get("region")),
		Town:      v.Get("town").String(),
		TokenCost: int(field(v, "tokenCost", "token_cost").Int()),
		Pokemon:   stringList(field(v, "pokemonList", "pokemon")),
	}
	if dungeon.Name == "" && key.Type == gjson.String {
		dungeon.Name = key.String()
	}
	if dungeon.Town == "" {
		dungeon.Town = dungeon.Name
	}

	field(v, "bossList", "bosses").ForEach(func(_, b gjson.Result) bool {
		boss := automation.Boss{
			Kind: automation.BossOther,
			Name: field(b, "name", "pokemon").String(),
		}
		switch strings.ToLower(field(b, "kind", "type").String()) {
		case "pokemon", "dungeonbosspokemon":
			boss.Kind = automation.BossPokemon
		}
		if req := field(b, "requirement", "options.requirement"); req.Exists() {
			boss.Requirement = transformRequirement(req)
		}
		dungeon.Bosses = append(dungeon.Bosses, boss)
		return true
	})

	return dungeon
}

// transformRequirement converts a requirement tree. Unknown kinds are kept as is,
// so they are never considered met.
func transformRequirement(v gjson.Result) *automation.Requirement {
	req := &automation.Requirement{
		Kind: automation.RequirementKind(strings.ToLower(field(v, "kind", "type").String())),
	}

	switch req.Kind {
	case automation.RequirementWeather, "weatherrequirement":
		req.Kind = automation.RequirementWeather
		for _, w := range stringList(field(v, "weather", "weatherTypes")) {
			req.Weather = append(req.Weather, automation.WeatherType(w))
		}
	case automation.RequirementComposite, "multirequirement":
		req.Kind = automation.RequirementComposite
		field(v, "children", "requirements").ForEach(func(_, child gjson.Result) bool {
			req.Children = append(req.Children, *transformRequirement(child))
			return true
		})
	default:
		if flag := field(v, "flag", "name"); flag.Exists() {
			req.Kind = automation.RequirementGeneric
			req.Flag = flag.String()
		}
	}

	return req
}

// transformPartyPokemon converts a caught pokémon entry.
func transformPartyPokemon(v gjson.Result) automation.PartyPokemon {
	p := automation.PartyPokemon{
		Name:       v.Get("name").String(),
		Pokerus:    parsePokerus(v.Get("pokerus")),
		BaseAttack: int(field(v, "baseAttack", "base_attack", "attack").Int()),
		EggCycles:  int(field(v, "eggCycles", "egg_cycles").Int()),
		Shiny:      v.Get("shiny").Bool(),
	}
	if vitamins := field(v, "vitaminsUsed", "vitamins"); vitamins.IsObject() {
		p.Vitamins = transformVitamins(vitamins)
	}
	return p
}

func transformVitamins(v gjson.Result) automation.Vitamins {
	return automation.Vitamins{
		Protein: int(field(v, "protein", "Protein").Int()),
		Calcium: int(field(v, "calcium", "Calcium").Int()),
		Carbos:  int(field(v, "carbos", "Carbos").Int()),
	}
}

// parsePokerus accepts the state names and the game's numeric enum
// (0 none, 1 infected, 2 contagious, 3 resistant).
func parsePokerus(v gjson.Result) automation.ImmunityState {
	if v.Type == gjson.Number {
		switch v.Int() {
		case 2:
			return automation.PokerusContagious
		case 3:
			return automation.PokerusResistant
		}
		return automation.PokerusUninfected
	}

	state := automation.ImmunityState(strings.ToUpper(v.String()))
	if state.IsValid() {
		return state
	}
	return automation.PokerusUninfected
}

// parseRegion accepts region numbers and names.
func parseRegion(v gjson.Result) automation.Region {
	if v.Type == gjson.Number {
		return automation.Region(v.Int())
	}
	if n, err := strconv.Atoi(v.String()); err == nil {
		return automation.Region(n)
	}
	return automation.ParseRegion(strings.ToLower(v.String()))
}

// field returns the first alias present in v.
func field(v gjson.Result, aliases ...string) gjson.Result {
	for _, alias := range aliases {
		if r := v.Get(alias); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
