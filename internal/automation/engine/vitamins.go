package engine

import (
	"context"
	"fmt"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/vitamins"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// BestVitamins executes the best_vitamins tool logic.
func (e *Engine) BestVitamins(ctx context.Context, req automation.BestVitaminsRequest) (*automation.BestVitaminsResponse, error) {
	if req.Pokemon != "" {
		p, ok := e.state.PartyPokemon(req.Pokemon)
		if !ok {
			return nil, fmt.Errorf("pokemon %q is not caught", req.Pokemon)
		}
		req.BaseAttack = p.BaseAttack
		req.EggCycles = p.EggCycles
	}
	if req.BaseAttack < 0 || req.EggCycles < 0 {
		return nil, fmt.Errorf("base attack and egg cycles must not be negative")
	}

	tier := e.state.HighestRegion()
	if req.Region != nil {
		tier = *req.Region
	}

	return &automation.BestVitaminsResponse{
		Pokemon:    req.Pokemon,
		Region:     tier,
		Budget:     vitamins.Budget(tier),
		Allocation: e.bestAllocation(req.BaseAttack, req.EggCycles, tier),
		Baseline:   vitamins.Efficiency(automation.Allocation{}, req.BaseAttack, req.EggCycles),
	}, nil
}

// bestAllocation memoizes vitamins.BestAllocation.
func (e *Engine) bestAllocation(baseAttack, eggCycles int, tier automation.Region) automation.Allocation {
	key := allocationKey{baseAttack: baseAttack, eggCycles: eggCycles, tier: tier}
	if alloc, ok := e.cache.Get(key); ok {
		return alloc
	}
	alloc := vitamins.BestAllocation(baseAttack, eggCycles, tier)
	e.cache.Add(key, alloc)
	return alloc
}

// ApplyVitamins executes the apply_vitamins tool logic: every selected party member
// is moved toward its best allocation, within the vitamins in stock. The game model
// only changes once the database has stored every change.
func (e *Engine) ApplyVitamins(ctx context.Context, req automation.ApplyVitaminsRequest) (*automation.ApplyVitaminsResponse, error) {
	e.autoVitamins.applyMu.Lock()
	defer e.autoVitamins.applyMu.Unlock()

	skipShiny := e.state.SkipShinyVitamins()
	if req.SkipShiny != nil {
		skipShiny = *req.SkipShiny
	}

	party := e.state.Party()
	if len(req.Pokemon) > 0 {
		party = make([]automation.PartyPokemon, 0, len(req.Pokemon))
		for _, name := range req.Pokemon {
			p, ok := e.state.PartyPokemon(name)
			if !ok {
				return nil, fmt.Errorf("pokemon %q is not caught", name)
			}
			party = append(party, p)
		}
	}

	tier := e.state.HighestRegion()
	stock := e.state.VitaminStock()
	resp := &automation.ApplyVitaminsResponse{Changes: []automation.VitaminChange{}}

	for _, p := range party {
		if skipShiny && p.Shiny {
			resp.Skipped = append(resp.Skipped, p.Name)
			continue
		}

		target := e.bestAllocation(p.BaseAttack, p.EggCycles, tier)
		delta := vitamins.Plan(p.Vitamins, target, stock)
		if vitamins.IsZero(delta) {
			continue
		}

		stock = addVitamins(stock, negate(delta))
		resp.Changes = append(resp.Changes, automation.VitaminChange{
			Pokemon: p.Name,
			Target:  target,
			Delta:   delta,
			Result:  addVitamins(p.Vitamins, delta),
		})
	}
	resp.Stock = stock

	if len(resp.Changes) == 0 {
		return resp, nil
	}

	if err := e.player.SaveVitamins(ctx, resp.Changes, stock); err != nil {
		return nil, err
	}
	for _, c := range resp.Changes {
		e.state.SetVitamins(c.Pokemon, c.Result)
	}
	e.state.SetVitaminStock(stock)

	e.logger.Info("vitamins applied", "changed", len(resp.Changes), "skipped", len(resp.Skipped))
	return resp, nil
}

func addVitamins(a, b automation.Vitamins) automation.Vitamins {
	return automation.Vitamins{
		Protein: a.Protein + b.Protein,
		Calcium: a.Calcium + b.Calcium,
		Carbos:  a.Carbos + b.Carbos,
	}
}

func negate(v automation.Vitamins) automation.Vitamins {
	return automation.Vitamins{Protein: -v.Protein, Calcium: -v.Calcium, Carbos: -v.Carbos}
}
