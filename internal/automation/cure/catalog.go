package cure

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// DefaultRoutePokemon is returned for routes the game data has no encounters for.
const DefaultRoutePokemon = "Rattata"

// RouteCandidate is a route that still has pokémon to cure.
type RouteCandidate struct {
	Route          automation.Route
	NeedsBeastBall bool
}

// DungeonCandidate is a dungeon that still has pokémon to cure.
type DungeonCandidate struct {
	Dungeon        automation.Dungeon
	NeedsBeastBall bool
}

// Catalog holds the ordered route and dungeon candidates of a cure session.
type Catalog struct {
	world       WorldData
	inventory   Inventory
	eligibility *Eligibility

	routes   []*RouteCandidate
	dungeons []*DungeonCandidate
}

// NewCatalog scans every route and dungeon once and keeps those with at least one
// pokémon left to cure. Magikarp Jump routes are moved to the end of the route list.
func NewCatalog(world WorldData, inventory Inventory, eligibility *Eligibility) *Catalog {
	c := &Catalog{
		world:       world,
		inventory:   inventory,
		eligibility: eligibility,
	}

	for _, route := range world.Routes() {
		rc := &RouteCandidate{Route: route}
		if c.RouteNeedsCuring(rc, false) {
			c.routes = append(c.routes, rc)
		}
	}
	slices.SortStableFunc(c.routes, func(a, b *RouteCandidate) int {
		aLow, bLow := IsLowPriority(a.Route), IsLowPriority(b.Route)
		switch {
		case aLow && !bLow:
			return 1
		case bLow && !aLow:
			return -1
		}
		return 0
	})

	for _, dungeon := range world.Dungeons() {
		dc := &DungeonCandidate{Dungeon: dungeon}
		if c.DungeonNeedsCuring(dc, false) {
			c.dungeons = append(c.dungeons, dc)
		}
	}

	return c
}

// IsLowPriority reports whether the route belongs to the Magikarp Jump islands.
func IsLowPriority(route automation.Route) bool {
	return route.Region == automation.RegionAlola && route.SubRegion == automation.AlolaSubRegionMagikarpJump
}

// Routes returns the remaining route candidates in priority order.
func (c *Catalog) Routes() []*RouteCandidate {
	return c.routes
}

// Dungeons returns the remaining dungeon candidates in priority order.
func (c *Catalog) Dungeons() []*DungeonCandidate {
	return c.dungeons
}

// RouteNeedsCuring checks the route's pokémon with Eligibility.NeedsCuring.
func (c *Catalog) RouteNeedsCuring(rc *RouteCandidate, onlyAvailableContagious bool) bool {
	return c.eligibility.NeedsCuring(c.RoutePokemon(rc.Route, onlyAvailableContagious), onlyAvailableContagious)
}

// DungeonNeedsCuring checks the dungeon's pokémon with Eligibility.NeedsCuring.
func (c *Catalog) DungeonNeedsCuring(dc *DungeonCandidate, onlyAvailableContagious bool) bool {
	return c.eligibility.NeedsCuring(c.DungeonPokemon(dc.Dungeon, onlyAvailableContagious), onlyAvailableContagious)
}

// removeRoute drops a cured route from the candidates.
func (c *Catalog) removeRoute(rc *RouteCandidate) {
	c.routes = slices.DeleteFunc(c.routes, func(other *RouteCandidate) bool { return other == rc })
}

// removeDungeon drops a cured dungeon from the candidates.
func (c *Catalog) removeDungeon(dc *DungeonCandidate) {
	c.dungeons = slices.DeleteFunc(c.dungeons, func(other *DungeonCandidate) bool { return other == dc })
}

// RoutePokemon lists the pokémon of a route.
//
// With onlyAvailable set, water pokémon need the Super Rod (unless the route has no land
// pokémon) and special encounters need their requirement to be met right now.
func (c *Catalog) RoutePokemon(route automation.Route, onlyAvailable bool) []string {
	pools := route.Pokemon
	if pools == nil {
		return []string{DefaultRoutePokemon}
	}

	names := slices.Clone(pools.Land)

	if !onlyAvailable || len(pools.Land) == 0 || c.inventory.HasKeyItem(automation.KeyItemSuperRod) {
		names = append(names, pools.Water...)
	}

	names = append(names, pools.Headbutt...)

	for _, special := range pools.Special {
		if onlyAvailable && !c.requirementMet(special.Requirement, route.Region) {
			continue
		}
		names = append(names, special.Pokemon...)
	}

	return dedupe(names)
}

// DungeonPokemon lists the pokémon of a dungeon, including catchable bosses.
// With onlyAvailable set, locked bosses are left out.
func (c *Catalog) DungeonPokemon(dungeon automation.Dungeon, onlyAvailable bool) []string {
	names := dedupe(dungeon.Pokemon)
	seen := mapset.New[string]()
	for _, name := range names {
		seen.Put(name)
	}

	for _, boss := range dungeon.Bosses {
		if boss.Kind != automation.BossPokemon {
			continue
		}
		if onlyAvailable && !c.requirementMet(boss.Requirement, dungeon.Region) {
			continue
		}
		if seen.Has(boss.Name) {
			continue
		}
		seen.Put(boss.Name)
		names = append(names, boss.Name)
	}

	return names
}

// requirementMet evaluates a requirement. Weather requirements are checked against the
// live weather of the given region.
func (c *Catalog) requirementMet(req *automation.Requirement, region automation.Region) bool {
	if req == nil {
		return true
	}

	switch req.Kind {
	case automation.RequirementWeather:
		return slices.Contains(req.Weather, c.world.Weather(region))
	case automation.RequirementGeneric:
		return c.world.HasFlag(req.Flag)
	case automation.RequirementComposite:
		for i := range req.Children {
			if !c.requirementMet(&req.Children[i], region) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// dedupe removes repeated names, keeping the first occurrence.
func dedupe(names []string) []string {
	seen := mapset.New[string]()
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen.Has(name) {
			continue
		}
		seen.Put(name)
		out = append(out, name)
	}
	return out
}
