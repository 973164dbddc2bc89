package vitamins

import (
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Plan returns the vitamin changes that bring current usage to target.
// Positive values are vitamins to use, negative values are vitamins to remove.
// Uses are capped by the stock on hand; removals are never capped.
func Plan(current automation.Vitamins, target automation.Allocation, stock automation.Vitamins) automation.Vitamins {
	return automation.Vitamins{
		Protein: planDelta(current.Protein, target.Protein, stock.Protein),
		Calcium: planDelta(current.Calcium, target.Calcium, stock.Calcium),
		Carbos:  planDelta(current.Carbos, target.Carbos, stock.Carbos),
	}
}

func planDelta(current, target, stock int) int {
	delta := target - current
	if delta > 0 && delta > stock {
		if stock < 0 {
			return 0
		}
		return stock
	}
	return delta
}

// IsZero reports whether a plan changes nothing.
func IsZero(delta automation.Vitamins) bool {
	return delta.Protein == 0 && delta.Calcium == 0 && delta.Carbos == 0
}
