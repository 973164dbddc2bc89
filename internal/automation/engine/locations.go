package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/zyedidia/generic/mapset"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

const maxSuggestions = 4

type locationCandidate struct {
	alias    string
	distance int
	order    int
	route    *automation.Route
	dungeon  *automation.Dungeon
}

func (c locationCandidate) name() string {
	if c.route != nil {
		return c.route.Name
	}
	return c.dungeon.Name
}

// LocationPokemon executes the location_pokemon tool logic. Names are matched
// case-insensitively, then with a small edit distance.
func (e *Engine) LocationPokemon(ctx context.Context, req automation.LocationPokemonRequest) (*automation.LocationPokemonResponse, error) {
	query := normalizeName(req.Name)
	if query == "" {
		return nil, fmt.Errorf("location name is required")
	}

	candidates := e.locationCandidates(req.Region)

	var matches []locationCandidate
	for _, c := range candidates {
		if c.alias == query {
			c.distance = 0
			matches = append(matches, c)
			continue
		}
		if len(query) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(query, c.alias)
		if dist > levenshteinLimit(len(c.alias)) {
			continue
		}
		c.distance = dist
		matches = append(matches, c)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("unknown location %q", req.Name)
	}

	slices.SortStableFunc(matches, func(a, b locationCandidate) int {
		if a.distance != b.distance {
			return a.distance - b.distance
		}
		return a.order - b.order
	})

	best := matches[0]
	resp := &automation.LocationPokemonResponse{Name: best.name()}

	seen := mapset.New[string]()
	seen.Put(best.name())
	for _, c := range matches[1:] {
		if seen.Has(c.name()) {
			continue
		}
		seen.Put(c.name())
		resp.Suggestions = append(resp.Suggestions, c.name())
		if len(resp.Suggestions) >= maxSuggestions {
			break
		}
	}

	catalog := cure.NewCatalog(e.state, e.state, cure.NewEligibility(e.state, e.state, e.state))
	if best.route != nil {
		resp.Kind = "route"
		resp.Region = best.route.Region
		resp.Number = best.route.Number
		resp.Pokemon = catalog.RoutePokemon(*best.route, req.OnlyAvailable)
	} else {
		resp.Kind = "dungeon"
		resp.Region = best.dungeon.Region
		resp.Pokemon = catalog.DungeonPokemon(*best.dungeon, req.OnlyAvailable)
	}

	return resp, nil
}

// locationCandidates lists every route and dungeon alias, optionally limited to a region.
// Routes can also be named "route <number>".
func (e *Engine) locationCandidates(region *automation.Region) []locationCandidate {
	var candidates []locationCandidate

	routes := e.state.Routes()
	for i := range routes {
		r := &routes[i]
		if region != nil && r.Region != *region {
			continue
		}
		candidates = append(candidates,
			locationCandidate{alias: normalizeName(r.Name), order: len(candidates), route: r},
			locationCandidate{alias: fmt.Sprintf("route %d", r.Number), order: len(candidates) + 1, route: r},
		)
	}

	dungeons := e.state.Dungeons()
	for i := range dungeons {
		d := &dungeons[i]
		if region != nil && d.Region != *region {
			continue
		}
		candidates = append(candidates, locationCandidate{alias: normalizeName(d.Name), order: len(candidates), dungeon: d})
	}

	return candidates
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
