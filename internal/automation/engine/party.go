package engine

import (
	"context"
	"fmt"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// UpdateParty executes the update_party tool logic. The battle engine reports
// immunity changes through it; the cure loop sees them on its next tick.
func (e *Engine) UpdateParty(ctx context.Context, req automation.UpdatePartyRequest) (*automation.UpdatePartyResponse, error) {
	for _, u := range req.Updates {
		if !u.Pokerus.IsValid() {
			return nil, fmt.Errorf("invalid pokerus state %q for %s", u.Pokerus, u.Name)
		}
	}

	resp := &automation.UpdatePartyResponse{}
	for _, u := range req.Updates {
		if !e.state.SetPokerus(u.Name, u.Pokerus) {
			resp.Unknown = append(resp.Unknown, u.Name)
			continue
		}
		if req.Persist {
			if _, err := e.player.UpdatePokerus(ctx, u.Name, u.Pokerus); err != nil {
				return nil, err
			}
		}
		resp.Updated++
	}

	return resp, nil
}
