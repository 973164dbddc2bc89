package vitamins

import (
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

const (
	// CalciumUnlockRegion is the first region where Calcium can be used.
	CalciumUnlockRegion = automation.RegionHoenn
	// CarbosUnlockRegion is the first region where Carbos can be used.
	CarbosUnlockRegion = automation.RegionUnova

	vitaminsPerRegion = 5
)

// Budget returns how many vitamins a single pokémon can take at the given progression tier.
func Budget(tier automation.Region) int {
	if tier < automation.RegionKanto {
		return 0
	}
	return (int(tier) + 1) * vitaminsPerRegion
}

// BestAllocation searches every allocation that spends the whole budget and returns the one
// with the highest efficiency. The empty allocation is always part of the comparison, so the
// result is never worse than using no vitamins.
//
// Candidates are visited by increasing Carbos, then Calcium; the first maximum wins.
func BestAllocation(baseAttack, eggCycles int, tier automation.Region) automation.Allocation {
	best := automation.Allocation{}
	best.Efficiency = Efficiency(best, baseAttack, eggCycles)

	budget := Budget(tier)

	maxCarbos := 0
	if tier >= CarbosUnlockRegion {
		maxCarbos = budget
	}

	for carbos := 0; carbos <= maxCarbos; carbos++ {
		maxCalcium := 0
		if tier >= CalciumUnlockRegion {
			maxCalcium = budget - carbos
		}
		for calcium := 0; calcium <= maxCalcium; calcium++ {
			candidate := automation.Allocation{
				Protein: budget - carbos - calcium,
				Calcium: calcium,
				Carbos:  carbos,
			}
			candidate.Efficiency = Efficiency(candidate, baseAttack, eggCycles)
			if candidate.Efficiency > best.Efficiency {
				best = candidate
			}
		}
	}

	return best
}
