package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Route encounter pools as stored in route_pokemon.pool.
const (
	poolLand     = "land"
	poolWater    = "water"
	poolHeadbutt = "headbutt"
	poolSpecial  = "special"
)

// WorldStore handles route and dungeon data access.
type WorldStore struct {
	db *DB
}

// NewWorldStore creates a new WorldStore.
func NewWorldStore(db *DB) *WorldStore {
	return &WorldStore{db: db}
}

// ReplaceWorld replaces every route and dungeon, keeping the given order.
func (s *WorldStore) ReplaceWorld(ctx context.Context, routes []automation.Route, dungeons []automation.Dungeon) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"route_pokemon", "routes", "dungeon_pokemon", "dungeon_bosses", "dungeons"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		if err := insertRoutes(ctx, tx, routes); err != nil {
			return err
		}
		return insertDungeons(ctx, tx, dungeons)
	})
}

func insertRoutes(ctx context.Context, tx *sql.Tx, routes []automation.Route) error {
	routeStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO routes (region, number, sub_region, name, has_pokemon, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing route statement: %w", err)
	}
	defer func() { _ = routeStmt.Close() }()

	pokemonStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO route_pokemon (region, number, pool, group_index, pokemon, position, requirement)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing route pokemon statement: %w", err)
	}
	defer func() { _ = pokemonStmt.Close() }()

	insertPool := func(r automation.Route, pool string, group int, names []string, req sql.NullString) error {
		for i, name := range names {
			if _, err := pokemonStmt.ExecContext(ctx, r.Region, r.Number, pool, group, name, i, req); err != nil {
				return fmt.Errorf("inserting %s pokemon for route %s %d: %w", pool, r.Region, r.Number, err)
			}
		}
		return nil
	}

	for position, r := range routes {
		_, err := routeStmt.ExecContext(ctx, r.Region, r.Number, r.SubRegion, r.Name, r.Pokemon != nil, position)
		if err != nil {
			return fmt.Errorf("inserting route %s %d: %w", r.Region, r.Number, err)
		}
		if r.Pokemon == nil {
			continue
		}

		if err := insertPool(r, poolLand, 0, r.Pokemon.Land, sql.NullString{}); err != nil {
			return err
		}
		if err := insertPool(r, poolWater, 0, r.Pokemon.Water, sql.NullString{}); err != nil {
			return err
		}
		if err := insertPool(r, poolHeadbutt, 0, r.Pokemon.Headbutt, sql.NullString{}); err != nil {
			return err
		}
		for group, special := range r.Pokemon.Special {
			req, err := encodeRequirement(special.Requirement)
			if err != nil {
				return err
			}
			if err := insertPool(r, poolSpecial, group, special.Pokemon, req); err != nil {
				return err
			}
		}
	}

	return nil
}

func insertDungeons(ctx context.Context, tx *sql.Tx, dungeons []automation.Dungeon) error {
	dungeonStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO dungeons (name, region, town, token_cost, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing dungeon statement: %w", err)
	}
	defer func() { _ = dungeonStmt.Close() }()

	pokemonStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dungeon_pokemon (dungeon, pokemon, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing dungeon pokemon statement: %w", err)
	}
	defer func() { _ = pokemonStmt.Close() }()

	bossStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dungeon_bosses (dungeon, kind, name, position, requirement) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing dungeon boss statement: %w", err)
	}
	defer func() { _ = bossStmt.Close() }()

	for position, d := range dungeons {
		if _, err := dungeonStmt.ExecContext(ctx, d.Name, d.Region, d.Town, d.TokenCost, position); err != nil {
			return fmt.Errorf("inserting dungeon %s: %w", d.Name, err)
		}
		for i, name := range d.Pokemon {
			if _, err := pokemonStmt.ExecContext(ctx, d.Name, name, i); err != nil {
				return fmt.Errorf("inserting pokemon for dungeon %s: %w", d.Name, err)
			}
		}
		for i, boss := range d.Bosses {
			req, err := encodeRequirement(boss.Requirement)
			if err != nil {
				return err
			}
			if _, err := bossStmt.ExecContext(ctx, d.Name, boss.Kind, boss.Name, i, req); err != nil {
				return fmt.Errorf("inserting boss for dungeon %s: %w", d.Name, err)
			}
		}
	}

	return nil
}

// LoadRoutes returns every route in game order.
func (s *WorldStore) LoadRoutes(ctx context.Context) ([]automation.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT region, number, sub_region, name, has_pokemon
		FROM routes
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type routeKey struct {
		region automation.Region
		number int
	}
	var routes []automation.Route
	index := make(map[routeKey]int)
	for rows.Next() {
		var r automation.Route
		var hasPokemon bool
		if err := rows.Scan(&r.Region, &r.Number, &r.SubRegion, &r.Name, &hasPokemon); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		if hasPokemon {
			r.Pokemon = &automation.RoutePokemon{}
		}
		index[routeKey{r.Region, r.Number}] = len(routes)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pokemonRows, err := s.db.QueryContext(ctx, `
		SELECT region, number, pool, group_index, pokemon, requirement
		FROM route_pokemon
		ORDER BY region, number, pool, group_index, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying route pokemon: %w", err)
	}
	defer func() { _ = pokemonRows.Close() }()

	for pokemonRows.Next() {
		var key routeKey
		var pool, name string
		var group int
		var req sql.NullString
		if err := pokemonRows.Scan(&key.region, &key.number, &pool, &group, &name, &req); err != nil {
			return nil, fmt.Errorf("scanning route pokemon: %w", err)
		}

		i, ok := index[key]
		if !ok || routes[i].Pokemon == nil {
			continue
		}
		pools := routes[i].Pokemon

		switch pool {
		case poolLand:
			pools.Land = append(pools.Land, name)
		case poolWater:
			pools.Water = append(pools.Water, name)
		case poolHeadbutt:
			pools.Headbutt = append(pools.Headbutt, name)
		case poolSpecial:
			for len(pools.Special) <= group {
				pools.Special = append(pools.Special, automation.SpecialPokemon{})
			}
			special := &pools.Special[group]
			if special.Requirement == nil {
				if special.Requirement, err = decodeRequirement(req); err != nil {
					return nil, err
				}
			}
			special.Pokemon = append(special.Pokemon, name)
		}
	}

	return routes, pokemonRows.Err()
}

// LoadDungeons returns every dungeon in game order.
func (s *WorldStore) LoadDungeons(ctx context.Context) ([]automation.Dungeon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, region, town, token_cost
		FROM dungeons
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying dungeons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dungeons []automation.Dungeon
	index := make(map[string]int)
	for rows.Next() {
		var d automation.Dungeon
		if err := rows.Scan(&d.Name, &d.Region, &d.Town, &d.TokenCost); err != nil {
			return nil, fmt.Errorf("scanning dungeon: %w", err)
		}
		index[d.Name] = len(dungeons)
		dungeons = append(dungeons, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pokemonRows, err := s.db.QueryContext(ctx, `
		SELECT dungeon, pokemon FROM dungeon_pokemon ORDER BY dungeon, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying dungeon pokemon: %w", err)
	}
	defer func() { _ = pokemonRows.Close() }()

	for pokemonRows.Next() {
		var dungeon, name string
		if err := pokemonRows.Scan(&dungeon, &name); err != nil {
			return nil, fmt.Errorf("scanning dungeon pokemon: %w", err)
		}
		if i, ok := index[dungeon]; ok {
			dungeons[i].Pokemon = append(dungeons[i].Pokemon, name)
		}
	}
	if err := pokemonRows.Err(); err != nil {
		return nil, err
	}

	bossRows, err := s.db.QueryContext(ctx, `
		SELECT dungeon, kind, name, requirement FROM dungeon_bosses ORDER BY dungeon, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying dungeon bosses: %w", err)
	}
	defer func() { _ = bossRows.Close() }()

	for bossRows.Next() {
		var dungeon string
		var boss automation.Boss
		var req sql.NullString
		if err := bossRows.Scan(&dungeon, &boss.Kind, &boss.Name, &req); err != nil {
			return nil, fmt.Errorf("scanning dungeon boss: %w", err)
		}
		if boss.Requirement, err = decodeRequirement(req); err != nil {
			return nil, err
		}
		if i, ok := index[dungeon]; ok {
			dungeons[i].Bosses = append(dungeons[i].Bosses, boss)
		}
	}

	return dungeons, bossRows.Err()
}

// CountRoutes returns the number of stored routes.
func (s *WorldStore) CountRoutes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting routes: %w", err)
	}
	return count, nil
}

func encodeRequirement(req *automation.Requirement) (sql.NullString, error) {
	if req == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(req)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding requirement: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeRequirement(raw sql.NullString) (*automation.Requirement, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var req automation.Requirement
	if err := json.Unmarshal([]byte(raw.String), &req); err != nil {
		return nil, fmt.Errorf("decoding requirement: %w", err)
	}
	return &req, nil
}
