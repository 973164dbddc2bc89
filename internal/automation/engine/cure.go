package engine

import (
	"context"
	"errors"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// ErrPokerusLocked is returned when the player has not unlocked pokérus yet.
var ErrPokerusLocked = errors.New("the pokérus feature is locked until the Pokerus_virus key item is obtained")

// CureStart executes the cure_start tool logic.
func (e *Engine) CureStart(ctx context.Context) (*automation.CureStatusResponse, error) {
	if !e.state.HasKeyItem(automation.KeyItemPokerusVirus) {
		return nil, ErrPokerusLocked
	}
	if !e.loop.Start() {
		e.logger.Debug("cure loop already running")
	}
	return e.CureStatus(ctx)
}

// CureStop executes the cure_stop tool logic.
func (e *Engine) CureStop(ctx context.Context) (*automation.CureStatusResponse, error) {
	e.loop.Stop()
	return e.CureStatus(ctx)
}

// CureTick executes the cure_tick tool logic: one loop step, right now.
func (e *Engine) CureTick(ctx context.Context) (*automation.CureStatusResponse, error) {
	if !e.loop.Running() {
		return nil, errors.New("the cure loop is not running")
	}
	e.loop.Tick()
	return e.CureStatus(ctx)
}

// CureStatus executes the cure_status tool logic.
func (e *Engine) CureStatus(ctx context.Context) (*automation.CureStatusResponse, error) {
	status := e.loop.Status()

	resp := &automation.CureStatusResponse{
		Running:  status.Running,
		Session:  status.Session,
		State:    status.State,
		Routes:   make([]automation.CandidateInfo, 0, len(status.Routes)),
		Dungeons: make([]automation.CandidateInfo, 0, len(status.Dungeons)),
		Commands: e.state.Commands(),
		Notices:  e.state.Notices(),
	}
	if status.Route != nil {
		info := routeInfo(*status.Route)
		resp.Target = &info
	}
	if status.Dungeon != nil {
		info := dungeonInfo(*status.Dungeon)
		resp.Target = &info
	}
	for _, rc := range status.Routes {
		resp.Routes = append(resp.Routes, routeInfo(rc))
	}
	for _, dc := range status.Dungeons {
		resp.Dungeons = append(resp.Dungeons, dungeonInfo(dc))
	}

	return resp, nil
}

// NeedsCuring executes the needs_curing tool logic.
func (e *Engine) NeedsCuring(ctx context.Context, req automation.NeedsCuringRequest) (*automation.NeedsCuringResponse, error) {
	eligibility := cure.NewEligibility(e.state, e.state, e.state)
	// A Beastball is only needed when something contagious is left to catch.
	hasContagious := false
	for _, name := range req.Pokemon {
		if state, ok := e.state.PokerusState(name); ok && state == automation.PokerusContagious {
			hasContagious = true
			break
		}
	}
	return &automation.NeedsCuringResponse{
		NeedsCuring:    eligibility.NeedsCuring(req.Pokemon, req.OnlyAvailableContagious),
		NeedsBeastBall: hasContagious && eligibility.RequiresBeastBall(req.Pokemon),
	}, nil
}

func routeInfo(rc cure.RouteCandidate) automation.CandidateInfo {
	return automation.CandidateInfo{
		Kind:           "route",
		Name:           rc.Route.Name,
		Region:         rc.Route.Region,
		Number:         rc.Route.Number,
		NeedsBeastBall: rc.NeedsBeastBall,
	}
}

func dungeonInfo(dc cure.DungeonCandidate) automation.CandidateInfo {
	return automation.CandidateInfo{
		Kind:           "dungeon",
		Name:           dc.Dungeon.Name,
		Region:         dc.Dungeon.Region,
		NeedsBeastBall: dc.NeedsBeastBall,
	}
}
