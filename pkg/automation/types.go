// Package automation contains the core types for the pokeclicker automation server.
package automation

// ============================================
// GAME CONSTANTS
// ============================================

// Region is a game region. Regions are ordered by progression, so the
// highest region reached doubles as the player's progression tier.
type Region int

const (
	RegionNone   Region = -1
	RegionKanto  Region = 0
	RegionJohto  Region = 1
	RegionHoenn  Region = 2
	RegionSinnoh Region = 3
	RegionUnova  Region = 4
	RegionKalos  Region = 5
	RegionAlola  Region = 6
	RegionGalar  Region = 7
	RegionHisui  Region = 8
	RegionPaldea Region = 9
)

var regionNames = map[Region]string{
	RegionNone:   "none",
	RegionKanto:  "kanto",
	RegionJohto:  "johto",
	RegionHoenn:  "hoenn",
	RegionSinnoh: "sinnoh",
	RegionUnova:  "unova",
	RegionKalos:  "kalos",
	RegionAlola:  "alola",
	RegionGalar:  "galar",
	RegionHisui:  "hisui",
	RegionPaldea: "paldea",
}

// String returns the lower-case region name.
func (r Region) String() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRegion resolves a region name. Unknown names yield RegionNone.
func ParseRegion(name string) Region {
	for r, n := range regionNames {
		if n == name {
			return r
		}
	}
	return RegionNone
}

// AlolaSubRegionMagikarpJump is the Alola sub-region holding the Magikarp Jump islands.
const AlolaSubRegionMagikarpJump = 4

// ImmunityState is the pokérus state of a caught pokémon.
type ImmunityState string

const (
	PokerusUninfected ImmunityState = "UNINFECTED"
	PokerusContagious ImmunityState = "CONTAGIOUS"
	PokerusResistant  ImmunityState = "RESISTANT"
)

// IsValid checks if the state is a known immunity state.
func (s ImmunityState) IsValid() bool {
	switch s {
	case PokerusUninfected, PokerusContagious, PokerusResistant:
		return true
	}
	return false
}

// Pokeball names a capture item.
type Pokeball string

const (
	PokeballNone   Pokeball = "None"
	PokeballPoke   Pokeball = "Pokeball"
	PokeballGreat  Pokeball = "Greatball"
	PokeballUltra  Pokeball = "Ultraball"
	PokeballMaster Pokeball = "Masterball"
	PokeballBeast  Pokeball = "Beastball"
)

// ValidPokeballs returns every known capture item.
func ValidPokeballs() []Pokeball {
	return []Pokeball{
		PokeballNone,
		PokeballPoke,
		PokeballGreat,
		PokeballUltra,
		PokeballMaster,
		PokeballBeast,
	}
}

// IsValid checks if the ball is a known capture item.
func (b Pokeball) IsValid() bool {
	for _, valid := range ValidPokeballs() {
		if b == valid {
			return true
		}
	}
	return false
}

// KeyItemSuperRod unlocks water encounters on routes.
const KeyItemSuperRod = "Super_rod"

// KeyItemPokerusVirus unlocks the pokérus mechanic.
const KeyItemPokerusVirus = "Pokerus_virus"

var ultraBeasts = map[string]struct{}{
	"Nihilego":    {},
	"Buzzwole":    {},
	"Pheromosa":   {},
	"Xurkitree":   {},
	"Celesteela":  {},
	"Kartana":     {},
	"Guzzlord":    {},
	"Poipole":     {},
	"Naganadel":   {},
	"Stakataka":   {},
	"Blacephalon": {},
}

// IsUltraBeast reports whether the pokémon can only be caught with a Beastball.
func IsUltraBeast(name string) bool {
	_, ok := ultraBeasts[name]
	return ok
}

// ============================================
// WORLD TYPES
// ============================================

// WeatherType is a regional weather condition.
type WeatherType string

// RequirementKind tags the Requirement variant.
type RequirementKind string

const (
	RequirementWeather   RequirementKind = "weather"
	RequirementGeneric   RequirementKind = "generic"
	RequirementComposite RequirementKind = "composite"
)

// Requirement gates a special encounter or a dungeon boss.
//
// Only the fields matching Kind are meaningful: Weather for weather requirements,
// Flag for generic ones and Children for composite ones.
type Requirement struct {
	Kind     RequirementKind `json:"kind"`
	Weather  []WeatherType   `json:"weather,omitempty"`
	Flag     string          `json:"flag,omitempty"`
	Children []Requirement   `json:"children,omitempty"`
}

// SpecialPokemon is a group of route encounters behind a requirement.
type SpecialPokemon struct {
	Pokemon     []string     `json:"pokemon"`
	Requirement *Requirement `json:"requirement,omitempty"`
}

// RoutePokemon lists the encounter pools of a route.
type RoutePokemon struct {
	Land     []string         `json:"land,omitempty"`
	Water    []string         `json:"water,omitempty"`
	Headbutt []string         `json:"headbutt,omitempty"`
	Special  []SpecialPokemon `json:"special,omitempty"`
}

// Route is an open-world location.
type Route struct {
	Region    Region        `json:"region"`
	SubRegion int           `json:"sub_region"`
	Number    int           `json:"number"`
	Name      string        `json:"name"`
	Pokemon   *RoutePokemon `json:"pokemon,omitempty"` // nil when the game has no pool for it
}

// BossKind tags the Boss variant.
type BossKind string

const (
	BossPokemon BossKind = "pokemon"
	BossOther   BossKind = "other"
)

// Boss is a dungeon boss entry. Only pokémon bosses are catchable.
type Boss struct {
	Kind        BossKind     `json:"kind"`
	Name        string       `json:"name"`
	Requirement *Requirement `json:"requirement,omitempty"`
}

// Dungeon is an instanced location that costs dungeon tokens to enter.
type Dungeon struct {
	Name      string   `json:"name"`
	Region    Region   `json:"region"`
	Town      string   `json:"town"`
	TokenCost int      `json:"token_cost"`
	Pokemon   []string `json:"pokemon"`
	Bosses    []Boss   `json:"bosses,omitempty"`
}

// ============================================
// PLAYER TYPES
// ============================================

// Vitamins counts the vitamins used on a pokémon, or held in stock.
type Vitamins struct {
	Protein int `json:"protein"`
	Calcium int `json:"calcium"`
	Carbos  int `json:"carbos"`
}

// PartyPokemon is a caught pokémon.
type PartyPokemon struct {
	Name       string        `json:"name"`
	Pokerus    ImmunityState `json:"pokerus"`
	BaseAttack int           `json:"base_attack"`
	EggCycles  int           `json:"egg_cycles"`
	Shiny      bool          `json:"shiny,omitempty"`
	Vitamins   Vitamins      `json:"vitamins"`
}

// ============================================
// AUTOMATION TYPES
// ============================================

// Allocation is a vitamin allocation with its breeding efficiency.
type Allocation struct {
	Protein    int     `json:"protein"`
	Calcium    int     `json:"calcium"`
	Carbos     int     `json:"carbos"`
	Efficiency float64 `json:"efficiency"`
}

// Total returns the number of vitamins in the allocation.
func (a Allocation) Total() int {
	return a.Protein + a.Calcium + a.Carbos
}

// TargetState is the state of the cure target selector.
type TargetState string

const (
	TargetIdle          TargetState = "IDLE"
	TargetRouteActive   TargetState = "ROUTE_ACTIVE"
	TargetDungeonActive TargetState = "DUNGEON_ACTIVE"
	TargetExhausted     TargetState = "EXHAUSTED"
)

// ============================================
// TOOL REQUEST/RESPONSE TYPES
// ============================================

// BestVitaminsRequest is the input for the best_vitamins tool.
type BestVitaminsRequest struct {
	BaseAttack int     `json:"base_attack"`
	EggCycles  int     `json:"egg_cycles"`
	Region     *Region `json:"region,omitempty"`  // defaults to the highest region reached
	Pokemon    string  `json:"pokemon,omitempty"` // use the party entry's stats instead
}

// BestVitaminsResponse is the output for the best_vitamins tool.
type BestVitaminsResponse struct {
	Pokemon    string     `json:"pokemon,omitempty"`
	Region     Region     `json:"region"`
	Budget     int        `json:"budget"`
	Allocation Allocation `json:"allocation"`
	Baseline   float64    `json:"baseline_efficiency"`
}

// ApplyVitaminsRequest is the input for the apply_vitamins tool.
type ApplyVitaminsRequest struct {
	SkipShiny *bool    `json:"skip_shiny,omitempty"`
	Pokemon   []string `json:"pokemon,omitempty"` // empty means the whole party
}

// VitaminChange describes the vitamins changed on one pokémon.
type VitaminChange struct {
	Pokemon string     `json:"pokemon"`
	Target  Allocation `json:"target"`
	Delta   Vitamins   `json:"delta"`
	Result  Vitamins   `json:"result"`
}

// ApplyVitaminsResponse is the output for the apply_vitamins tool.
type ApplyVitaminsResponse struct {
	Changes []VitaminChange `json:"changes"`
	Skipped []string        `json:"skipped,omitempty"`
	Stock   Vitamins        `json:"stock_left"`
}

// CandidateInfo summarizes a cure candidate location.
type CandidateInfo struct {
	Kind           string `json:"kind"` // "route" or "dungeon"
	Name           string `json:"name"`
	Region         Region `json:"region"`
	Number         int    `json:"number,omitempty"`
	NeedsBeastBall bool   `json:"needs_beast_ball"`
}

// CureStatusResponse is the output for the cure_* tools.
type CureStatusResponse struct {
	Running  bool            `json:"running"`
	Session  string          `json:"session,omitempty"`
	State    TargetState     `json:"state"`
	Target   *CandidateInfo  `json:"target,omitempty"`
	Routes   []CandidateInfo `json:"routes"`
	Dungeons []CandidateInfo `json:"dungeons"`
	Commands []string        `json:"commands,omitempty"`
	Notices  []string        `json:"notifications,omitempty"`
}

// NeedsCuringRequest is the input for the needs_curing tool.
type NeedsCuringRequest struct {
	Pokemon                 []string `json:"pokemon"`
	OnlyAvailableContagious bool     `json:"only_available_contagious"`
}

// NeedsCuringResponse is the output for the needs_curing tool.
type NeedsCuringResponse struct {
	NeedsCuring    bool `json:"needs_curing"`
	NeedsBeastBall bool `json:"needs_beast_ball"`
}

// LocationPokemonRequest is the input for the location_pokemon tool.
type LocationPokemonRequest struct {
	Name          string  `json:"name"`
	Region        *Region `json:"region,omitempty"`
	OnlyAvailable bool    `json:"only_available"`
}

// LocationPokemonResponse is the output for the location_pokemon tool.
type LocationPokemonResponse struct {
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Region      Region   `json:"region"`
	Number      int      `json:"number,omitempty"`
	Pokemon     []string `json:"pokemon"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// PartyUpdate reports a change applied by the external battle engine.
type PartyUpdate struct {
	Name    string        `json:"name"`
	Pokerus ImmunityState `json:"pokerus"`
}

// UpdatePartyRequest is the input for the update_party tool.
type UpdatePartyRequest struct {
	Updates []PartyUpdate `json:"updates"`
	Persist bool          `json:"persist"`
}

// UpdatePartyResponse is the output for the update_party tool.
type UpdatePartyResponse struct {
	Updated int      `json:"updated"`
	Unknown []string `json:"unknown,omitempty"`
}

// SetSettingRequest is the input for the set_setting tool.
type SetSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetSettingResponse is the output for the set_setting tool.
type SetSettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Setting keys understood by set_setting.
const (
	SettingAllowBeastBall    = "allow_beast_ball"
	SettingAutoVitamins      = "auto_vitamins"
	SettingPokeball          = "pokeball"
	SettingSkipShinyVitamins = "skip_shiny_vitamins"
)
