package cure

import (
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Eligibility decides which pokémon still need to be cured.
type Eligibility struct {
	party     PartyLookup
	inventory Inventory
	settings  Settings
}

// NewEligibility creates an Eligibility over the given collaborators.
func NewEligibility(party PartyLookup, inventory Inventory, settings Settings) *Eligibility {
	return &Eligibility{
		party:     party,
		inventory: inventory,
		settings:  settings,
	}
}

// skipUltraBeasts is true when Ultra Beasts cannot be caught right now.
func (e *Eligibility) skipUltraBeasts() bool {
	return !e.settings.AllowBeastBall() || e.inventory.BallQuantity(automation.PokeballBeast) == 0
}

// NeedsCuring reports whether any of the pokémon still needs to be cured.
//
// A caught pokémon needs curing while it is not resistant. With onlyAvailableContagious set
// it must also be contagious, and Ultra Beasts are ignored when no Beastball can be thrown.
// Pokémon not caught yet never need curing.
func (e *Eligibility) NeedsCuring(names []string, onlyAvailableContagious bool) bool {
	skipUltraBeasts := onlyAvailableContagious && e.skipUltraBeasts()

	for _, name := range names {
		if skipUltraBeasts && automation.IsUltraBeast(name) {
			continue
		}

		state, ok := e.party.PokerusState(name)
		if !ok || state == automation.PokerusResistant {
			continue
		}
		if !onlyAvailableContagious || state == automation.PokerusContagious {
			return true
		}
	}
	return false
}

// RequiresBeastBall reports whether every contagious pokémon is an Ultra Beast,
// leaving the Beastball as the only way to catch anything there.
func (e *Eligibility) RequiresBeastBall(names []string) bool {
	for _, name := range names {
		state, ok := e.party.PokerusState(name)
		if ok && state == automation.PokerusContagious && !automation.IsUltraBeast(name) {
			return false
		}
	}
	return true
}
