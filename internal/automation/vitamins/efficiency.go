// Package vitamins computes vitamin allocations that maximize breeding efficiency.
package vitamins

import (
	"math"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

const (
	// BreedingAttackBonus is the base percentage of attack gained when hatching.
	BreedingAttackBonus = 25
	// EggCycleMultiplier converts egg cycles into steps.
	EggCycleMultiplier = 40

	// stepsThreshold is where Carbos starts to reduce egg steps.
	stepsThreshold = 300
	// carbosDivisor scales how much each Carbos flattens the step curve.
	carbosDivisor = 70
)

// AttackBonus returns the attack gained by hatching a pokémon with the given vitamins.
// Calcium raises the bonus percentage, Protein adds flat attack.
func AttackBonus(alloc automation.Allocation, baseAttack int) float64 {
	return float64(baseAttack)*float64(BreedingAttackBonus+alloc.Calcium)/100 + float64(alloc.Protein)
}

// EggSteps returns the steps needed to hatch an egg with the given vitamins.
// Protein and Calcium lengthen the egg, Carbos shortens it once it exceeds 300 steps.
func EggSteps(alloc automation.Allocation, eggCycles int) float64 {
	extraCycles := float64(alloc.Calcium+alloc.Protein) / 2
	steps := (float64(eggCycles) + extraCycles) * EggCycleMultiplier
	if steps <= stepsThreshold {
		return steps
	}
	return diminishedSteps(steps, alloc.Carbos)
}

func diminishedSteps(steps float64, carbos int) float64 {
	exponent := 1 - float64(carbos)/carbosDivisor
	return math.Round(math.Pow(steps/stepsThreshold, exponent) * stepsThreshold)
}

// Efficiency returns the attack gained per egg cycle for the given vitamins.
func Efficiency(alloc automation.Allocation, baseAttack, eggCycles int) float64 {
	return AttackBonus(alloc, baseAttack) / EggSteps(alloc, eggCycles) * EggCycleMultiplier
}
