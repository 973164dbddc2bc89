package sync

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/db"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

const gameData = `{
  "routes": [
    {
      "region": 2,
      "number": 119,
      "subRegion": 0,
      "name": "Hoenn Route 119",
      "pokemon": {
        "land": ["Zigzagoon", "Linoone"],
        "water": ["Tentacool"],
        "special": [
          {"pokemon": ["Castform"], "req": {"type": "WeatherRequirement", "weatherTypes": ["Rain"]}},
          {"pokemon": ["Kecleon"], "requirement": {"kind": "composite", "children": [{"kind": "generic", "flag": "ClearedE4"}]}}
        ]
      }
    },
    {"region": "alola", "number": 1, "sub_region": 4}
  ],
  "dungeons": {
    "Mt. Moon": {
      "region": 0,
      "tokenCost": 75,
      "pokemonList": ["Zubat", "Geodude"],
      "bossList": [
        {"type": "DungeonBossPokemon", "name": "Kabuto"},
        {"type": "DungeonTrainer", "name": "Super Nerd Miguel"}
      ]
    }
  }
}`

const saveData = `{
  "save": {
    "party": [
      {"name": "Treecko", "pokerus": 2, "baseAttack": 45, "eggCycles": 20},
      {"name": "Mudkip", "pokerus": "resistant", "base_attack": 70, "egg_cycles": 20, "shiny": true, "vitaminsUsed": {"protein": 3}},
      {"pokerus": 2}
    ],
    "pokeballs": {"Ultraball": 40, "Beastball": 2, "Rocketball": 9},
    "dungeonTokens": 1200,
    "vitamins": {"Protein": 10, "Calcium": 4, "Carbos": 1},
    "keyItems": ["Super_rod", "Pokerus_virus"],
    "flags": ["ClearedE4"],
    "weather": {"hoenn": "Rain", "3": "Snow"},
    "highestRegion": "hoenn"
  }
}`

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenAndInit(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenAndInit: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestImportGameData(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	res, err := NewSyncer(database).ImportGameData(ctx, []byte(gameData))
	if err != nil {
		t.Fatalf("ImportGameData: %v", err)
	}
	if res.Routes != 2 || res.Dungeons != 1 {
		t.Fatalf("ImportGameData()=%+v", res)
	}

	world := db.NewWorldStore(database)
	routes, err := world.LoadRoutes(ctx)
	if err != nil {
		t.Fatalf("LoadRoutes: %v", err)
	}
	want := automation.Route{
		Region: automation.RegionHoenn,
		Number: 119,
		Name:   "Hoenn Route 119",
		Pokemon: &automation.RoutePokemon{
			Land:  []string{"Zigzagoon", "Linoone"},
			Water: []string{"Tentacool"},
			Special: []automation.SpecialPokemon{
				{
					Pokemon:     []string{"Castform"},
					Requirement: &automation.Requirement{Kind: automation.RequirementWeather, Weather: []automation.WeatherType{"Rain"}},
				},
				{
					Pokemon: []string{"Kecleon"},
					Requirement: &automation.Requirement{
						Kind:     automation.RequirementComposite,
						Children: []automation.Requirement{{Kind: automation.RequirementGeneric, Flag: "ClearedE4"}},
					},
				},
			},
		},
	}
	if !reflect.DeepEqual(routes[0], want) {
		t.Fatalf("route[0]=%+v want=%+v", routes[0], want)
	}
	if routes[1].Region != automation.RegionAlola || routes[1].SubRegion != automation.AlolaSubRegionMagikarpJump || routes[1].Pokemon != nil {
		t.Fatalf("route[1]=%+v", routes[1])
	}

	dungeons, err := world.LoadDungeons(ctx)
	if err != nil {
		t.Fatalf("LoadDungeons: %v", err)
	}
	d := dungeons[0]
	if d.Name != "Mt. Moon" || d.Town != "Mt. Moon" || d.TokenCost != 75 || len(d.Bosses) != 2 {
		t.Fatalf("dungeon=%+v", d)
	}
	if d.Bosses[0].Kind != automation.BossPokemon || d.Bosses[1].Kind != automation.BossOther {
		t.Fatalf("bosses=%+v", d.Bosses)
	}

	count, err := database.GetSyncMetadata(ctx, MetaRoutesCount)
	if err != nil || count != "2" {
		t.Fatalf("routes_count=%q,%v", count, err)
	}
}

func TestImportGameDataInvalid(t *testing.T) {
	if _, err := NewSyncer(openTestDB(t)).ImportGameData(context.Background(), []byte(`{"routes": [`)); err == nil {
		t.Fatalf("expected an error for a truncated document")
	}
}

func TestImportSaveFromFile(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte(saveData), 0o600); err != nil {
		t.Fatalf("writing save: %v", err)
	}

	res, err := NewSyncer(database).ImportSaveFromFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportSaveFromFile: %v", err)
	}
	if res.Party != 2 || res.HighestRegion != automation.RegionHoenn {
		t.Fatalf("ImportSave()=%+v", res)
	}

	store := db.NewPlayerStore(database)
	party, err := store.LoadParty(ctx)
	if err != nil {
		t.Fatalf("LoadParty: %v", err)
	}
	wantParty := []automation.PartyPokemon{
		{Name: "Treecko", Pokerus: automation.PokerusContagious, BaseAttack: 45, EggCycles: 20},
		{Name: "Mudkip", Pokerus: automation.PokerusResistant, BaseAttack: 70, EggCycles: 20, Shiny: true, Vitamins: automation.Vitamins{Protein: 3}},
	}
	if !reflect.DeepEqual(party, wantParty) {
		t.Fatalf("LoadParty()=%+v want=%+v", party, wantParty)
	}

	items, err := store.Inventory(ctx)
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	wantItems := map[string]int{
		"Ultraball":         40,
		"Beastball":         2,
		db.ItemDungeonToken: 1200,
		db.ItemProtein:      10,
		db.ItemCalcium:      4,
		db.ItemCarbos:       1,
	}
	if !reflect.DeepEqual(items, wantItems) {
		t.Fatalf("Inventory()=%v want=%v", items, wantItems)
	}

	keyItems, _ := store.KeyItems(ctx)
	if !slices.Equal(keyItems, []string{automation.KeyItemPokerusVirus, automation.KeyItemSuperRod}) {
		t.Fatalf("KeyItems()=%v", keyItems)
	}
	weather, _ := store.Weather(ctx)
	if weather[automation.RegionHoenn] != "Rain" || weather[automation.RegionSinnoh] != "Snow" {
		t.Fatalf("Weather()=%v", weather)
	}
}

func TestParsePokerus(t *testing.T) {
	tests := []struct {
		raw  string
		want automation.ImmunityState
	}{
		{raw: `{"p": 0}`, want: automation.PokerusUninfected},
		{raw: `{"p": 1}`, want: automation.PokerusUninfected},
		{raw: `{"p": 2}`, want: automation.PokerusContagious},
		{raw: `{"p": 3}`, want: automation.PokerusResistant},
		{raw: `{"p": "Contagious"}`, want: automation.PokerusContagious},
		{raw: `{"p": "bogus"}`, want: automation.PokerusUninfected},
		{raw: `{}`, want: automation.PokerusUninfected},
	}
	for _, tc := range tests {
		if got := parsePokerus(gjson.Get(tc.raw, "p")); got != tc.want {
			t.Fatalf("parsePokerus(%s)=%s want=%s", tc.raw, got, tc.want)
		}
	}
}
