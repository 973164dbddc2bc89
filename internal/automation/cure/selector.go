package cure

import (
	"slices"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Selector tracks the route or dungeon the cure loop currently targets.
// At most one of the two cursors is set at any time.
type Selector struct {
	catalog     *Catalog
	eligibility *Eligibility

	route   *RouteCandidate
	dungeon *DungeonCandidate
	state   automation.TargetState
}

// NewSelector creates an idle Selector over the catalog.
func NewSelector(catalog *Catalog) *Selector {
	return &Selector{
		catalog:     catalog,
		eligibility: catalog.eligibility,
		state:       automation.TargetIdle,
	}
}

// State returns the state reached by the last Advance.
func (s *Selector) State() automation.TargetState {
	return s.state
}

// Route returns the targeted route, if any.
func (s *Selector) Route() *RouteCandidate {
	return s.route
}

// Dungeon returns the targeted dungeon, if any.
func (s *Selector) Dungeon() *DungeonCandidate {
	return s.dungeon
}

// Reset clears both cursors.
func (s *Selector) Reset() {
	s.route = nil
	s.dungeon = nil
	s.state = automation.TargetIdle
}

// Advance re-validates the current target and picks a new one when it has nothing
// catchable left. The current target is kept as long as it still has available
// contagious pokémon. Otherwise routes are preferred over dungeons, since dungeons
// cost tokens.
func (s *Selector) Advance() automation.TargetState {
	if s.route != nil && s.catalog.RouteNeedsCuring(s.route, true) {
		s.state = automation.TargetRouteActive
		return s.state
	}
	if s.dungeon != nil && s.catalog.DungeonNeedsCuring(s.dungeon, true) {
		s.route = nil
		s.state = automation.TargetDungeonActive
		return s.state
	}

	if s.route != nil && !s.catalog.RouteNeedsCuring(s.route, false) {
		s.catalog.removeRoute(s.route)
	}
	if s.dungeon != nil && !s.catalog.DungeonNeedsCuring(s.dungeon, false) {
		s.catalog.removeDungeon(s.dungeon)
	}
	s.route = nil
	s.dungeon = nil

	if rc := s.nextRoute(); rc != nil {
		rc.NeedsBeastBall = s.eligibility.RequiresBeastBall(s.catalog.RoutePokemon(rc.Route, true))
		s.route = rc
		s.state = automation.TargetRouteActive
		return s.state
	}

	if dc := s.nextDungeon(); dc != nil {
		dc.NeedsBeastBall = s.eligibility.RequiresBeastBall(s.catalog.DungeonPokemon(dc.Dungeon, true))
		s.dungeon = dc
		s.state = automation.TargetDungeonActive
		return s.state
	}

	s.state = automation.TargetExhausted
	return s.state
}

// nextRoute returns the first route with available contagious pokémon, dropping
// fully cured routes met on the way.
func (s *Selector) nextRoute() *RouteCandidate {
	for _, rc := range slices.Clone(s.catalog.Routes()) {
		if !s.catalog.RouteNeedsCuring(rc, false) {
			s.catalog.removeRoute(rc)
			continue
		}
		if s.catalog.RouteNeedsCuring(rc, true) {
			return rc
		}
	}
	return nil
}

// nextDungeon returns the first dungeon with available contagious pokémon, dropping
// fully cured dungeons met on the way.
func (s *Selector) nextDungeon() *DungeonCandidate {
	for _, dc := range slices.Clone(s.catalog.Dungeons()) {
		if !s.catalog.DungeonNeedsCuring(dc, false) {
			s.catalog.removeDungeon(dc)
			continue
		}
		if s.catalog.DungeonNeedsCuring(dc, true) {
			return dc
		}
	}
	return nil
}
