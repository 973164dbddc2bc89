package cure

import (
	"testing"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

func newTestSelector(g *fakeGame) (*Catalog, *Selector) {
	c := newTestCatalog(g)
	return c, NewSelector(c)
}

func TestSelectorPrefersRoutes(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{landRoute(automation.RegionKanto, 22, "Mankey")}
	g.dungeons = []automation.Dungeon{{Name: "Viridian Forest", Town: "Viridian Forest", Pokemon: []string{"Caterpie"}}}
	g.party["Mankey"] = automation.PokerusContagious
	g.party["Caterpie"] = automation.PokerusContagious

	_, s := newTestSelector(g)
	if got := s.Advance(); got != automation.TargetRouteActive {
		t.Fatalf("Advance()=%s want=%s", got, automation.TargetRouteActive)
	}
	if s.Route() == nil || s.Route().Route.Number != 22 || s.Dungeon() != nil {
		t.Fatalf("expected route 22 to be targeted alone")
	}

	g.party["Mankey"] = automation.PokerusResistant
	if got := s.Advance(); got != automation.TargetDungeonActive {
		t.Fatalf("Advance()=%s want=%s", got, automation.TargetDungeonActive)
	}
	if s.Dungeon() == nil || s.Dungeon().Dungeon.Name != "Viridian Forest" || s.Route() != nil {
		t.Fatalf("expected Viridian Forest to be targeted alone")
	}
}

func TestSelectorKeepsCurrentTarget(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{
		landRoute(automation.RegionKanto, 1, "Pidgey"),
		landRoute(automation.RegionKanto, 2, "Caterpie"),
	}
	g.party["Pidgey"] = automation.PokerusUninfected
	g.party["Caterpie"] = automation.PokerusContagious

	_, s := newTestSelector(g)
	s.Advance()
	if s.Route().Route.Number != 2 {
		t.Fatalf("expected route 2, got route %d", s.Route().Route.Number)
	}

	// Route 1 becomes a better pick, but route 2 is not done yet.
	g.party["Pidgey"] = automation.PokerusContagious
	s.Advance()
	if s.Route().Route.Number != 2 {
		t.Fatalf("expected route 2 to stay targeted, got route %d", s.Route().Route.Number)
	}
}

func TestSelectorRemovesCuredLocations(t *testing.T) {
	g := newFakeGame()
	g.routes = []automation.Route{
		landRoute(automation.RegionKanto, 1, "Pidgey"),
		landRoute(automation.RegionKanto, 2, "Caterpie"),
	}
	g.party["Pidgey"] = automation.PokerusContagious
	g.party["Caterpie"] = automation.PokerusContagious

	c, s := newTestSelector(g)
	s.Advance()
	g.party["Pidgey"] = automation.PokerusResistant
	s.Advance()

	if s.Route().Route.Number != 2 {
		t.Fatalf("expected route 2, got route %d", s.Route().Route.Number)
	}
	if len(c.Routes()) != 1 {
		t.Fatalf("expected route 1 to be dropped, %d routes left", len(c.Routes()))
	}

	// A cured location never comes back within the session.
	g.party["Pidgey"] = automation.PokerusContagious
	g.party["Caterpie"] = automation.PokerusResistant
	if got := s.Advance(); got != automation.TargetExhausted {
		t.Fatalf("Advance()=%s want=%s", got, automation.TargetExhausted)
	}
	if len(c.Routes()) != 0 {
		t.Fatalf("expected every route to be dropped, %d left", len(c.Routes()))
	}
}

func TestSelectorKeepsTemporarilyUnavailableDungeon(t *testing.T) {
	g := newFakeGame()
	g.dungeons = []automation.Dungeon{{Name: "Ultra Space", Pokemon: []string{"Nihilego"}}}
	g.party["Nihilego"] = automation.PokerusContagious

	c, s := newTestSelector(g)
	if got := s.Advance(); got != automation.TargetExhausted {
		t.Fatalf("Advance()=%s want=%s", got, automation.TargetExhausted)
	}
	if len(c.Dungeons()) != 1 {
		t.Fatalf("expected the dungeon to stay a candidate")
	}

	g.allowBeastBall = true
	g.balls[automation.PokeballBeast] = 10
	if got := s.Advance(); got != automation.TargetDungeonActive {
		t.Fatalf("Advance()=%s want=%s", got, automation.TargetDungeonActive)
	}
	if !s.Dungeon().NeedsBeastBall {
		t.Fatalf("expected the dungeon to need Beastballs")
	}
}

func TestSelectorBeastBallFlag(t *testing.T) {
	g := newFakeGame()
	g.allowBeastBall = true
	g.balls[automation.PokeballBeast] = 10
	g.routes = []automation.Route{landRoute(automation.RegionAlola, 1, "Nihilego", "Pikipek")}
	g.party["Nihilego"] = automation.PokerusContagious
	g.party["Pikipek"] = automation.PokerusUninfected

	_, s := newTestSelector(g)
	s.Advance()
	if !s.Route().NeedsBeastBall {
		t.Fatalf("expected Beastballs when only an Ultra Beast is contagious")
	}

	g.party["Pikipek"] = automation.PokerusContagious
	s.Reset()
	s.Advance()
	if s.Route().NeedsBeastBall {
		t.Fatalf("expected regular balls once a regular pokémon is contagious")
	}
}
