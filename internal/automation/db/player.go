package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Inventory item names that are not pokéballs.
const (
	ItemDungeonToken = "dungeon_token"
	ItemProtein      = "Protein"
	ItemCalcium      = "Calcium"
	ItemCarbos       = "Carbos"
)

// PlayerStore handles the player's save data: party, items and world progress.
type PlayerStore struct {
	db *DB
}

// NewPlayerStore creates a new PlayerStore.
func NewPlayerStore(db *DB) *PlayerStore {
	return &PlayerStore{db: db}
}

// ReplaceParty replaces every caught pokémon, keeping the given order.
func (s *PlayerStore) ReplaceParty(ctx context.Context, party []automation.PartyPokemon) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM party`); err != nil {
			return fmt.Errorf("clearing party: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO party (name, pokerus, base_attack, egg_cycles, shiny, protein, calcium, carbos, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing party statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, p := range party {
			_, err := stmt.ExecContext(ctx,
				p.Name, p.Pokerus, p.BaseAttack, p.EggCycles, p.Shiny,
				p.Vitamins.Protein, p.Vitamins.Calcium, p.Vitamins.Carbos, i,
			)
			if err != nil {
				return fmt.Errorf("inserting party pokemon %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

// LoadParty returns every caught pokémon in catch order.
func (s *PlayerStore) LoadParty(ctx context.Context) ([]automation.PartyPokemon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, pokerus, base_attack, egg_cycles, shiny, protein, calcium, carbos
		FROM party
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying party: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var party []automation.PartyPokemon
	for rows.Next() {
		var p automation.PartyPokemon
		err := rows.Scan(
			&p.Name, &p.Pokerus, &p.BaseAttack, &p.EggCycles, &p.Shiny,
			&p.Vitamins.Protein, &p.Vitamins.Calcium, &p.Vitamins.Carbos,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning party pokemon: %w", err)
		}
		party = append(party, p)
	}

	return party, rows.Err()
}

// GetPartyPokemon retrieves a single caught pokémon. It returns nil when not caught.
func (s *PlayerStore) GetPartyPokemon(ctx context.Context, name string) (*automation.PartyPokemon, error) {
	p := &automation.PartyPokemon{Name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT pokerus, base_attack, egg_cycles, shiny, protein, calcium, carbos
		FROM party WHERE name = ?
	`, name).Scan(
		&p.Pokerus, &p.BaseAttack, &p.EggCycles, &p.Shiny,
		&p.Vitamins.Protein, &p.Vitamins.Calcium, &p.Vitamins.Carbos,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying party pokemon: %w", err)
	}
	return p, nil
}

// UpdatePokerus sets the immunity state of a caught pokémon.
// It returns false when the pokémon is not caught.
func (s *PlayerStore) UpdatePokerus(ctx context.Context, name string, state automation.ImmunityState) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE party SET pokerus = ? WHERE name = ?`, state, name)
	if err != nil {
		return false, fmt.Errorf("updating pokerus of %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating pokerus of %s: %w", name, err)
	}
	return n > 0, nil
}

// SaveVitamins stores the new vitamins of the changed pokémon together with
// the vitamin stock left. Either every row is written or none is.
func (s *PlayerStore) SaveVitamins(ctx context.Context, changes []automation.VitaminChange, stock automation.Vitamins) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		for _, c := range changes {
			_, err := tx.ExecContext(ctx, `
				UPDATE party SET protein = ?, calcium = ?, carbos = ? WHERE name = ?
			`, c.Result.Protein, c.Result.Calcium, c.Result.Carbos, c.Pokemon)
			if err != nil {
				return fmt.Errorf("updating vitamins of %s: %w", c.Pokemon, err)
			}
		}

		for _, item := range []struct {
			name     string
			quantity int
		}{
			{ItemProtein, stock.Protein},
			{ItemCalcium, stock.Calcium},
			{ItemCarbos, stock.Carbos},
		} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO inventory (item, quantity) VALUES (?, ?)
				ON CONFLICT(item) DO UPDATE SET quantity = excluded.quantity
			`, item.name, item.quantity)
			if err != nil {
				return fmt.Errorf("setting quantity of %s: %w", item.name, err)
			}
		}
		return nil
	})
}

// SetItemQuantity stores the quantity of an inventory item.
func (s *PlayerStore) SetItemQuantity(ctx context.Context, item string, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (item, quantity) VALUES (?, ?)
		ON CONFLICT(item) DO UPDATE SET quantity = excluded.quantity
	`, item, quantity)
	if err != nil {
		return fmt.Errorf("setting quantity of %s: %w", item, err)
	}
	return nil
}

// Inventory returns every stored item quantity.
func (s *PlayerStore) Inventory(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item, quantity FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make(map[string]int)
	for rows.Next() {
		var item string
		var quantity int
		if err := rows.Scan(&item, &quantity); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items[item] = quantity
	}

	return items, rows.Err()
}

// ReplaceKeyItems replaces the owned key items.
func (s *PlayerStore) ReplaceKeyItems(ctx context.Context, items []string) error {
	return s.replaceNames(ctx, "key_items", items)
}

// KeyItems returns the owned key items.
func (s *PlayerStore) KeyItems(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, "key_items")
}

// ReplaceFlags replaces the set progress flags.
func (s *PlayerStore) ReplaceFlags(ctx context.Context, flags []string) error {
	return s.replaceNames(ctx, "progress_flags", flags)
}

// Flags returns the set progress flags.
func (s *PlayerStore) Flags(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, "progress_flags")
}

// SetWeather stores the current weather of a region.
func (s *PlayerStore) SetWeather(ctx context.Context, region automation.Region, weather automation.WeatherType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO region_weather (region, weather) VALUES (?, ?)
		ON CONFLICT(region) DO UPDATE SET weather = excluded.weather
	`, region, weather)
	if err != nil {
		return fmt.Errorf("setting weather of %s: %w", region, err)
	}
	return nil
}

// Weather returns the stored weather of every region.
func (s *PlayerStore) Weather(ctx context.Context) (map[automation.Region]automation.WeatherType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT region, weather FROM region_weather`)
	if err != nil {
		return nil, fmt.Errorf("querying weather: %w", err)
	}
	defer func() { _ = rows.Close() }()

	weather := make(map[automation.Region]automation.WeatherType)
	for rows.Next() {
		var region automation.Region
		var w automation.WeatherType
		if err := rows.Scan(&region, &w); err != nil {
			return nil, fmt.Errorf("scanning weather: %w", err)
		}
		weather[region] = w
	}

	return weather, rows.Err()
}

func (s *PlayerStore) replaceNames(ctx context.Context, table string, names []string) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
				return fmt.Errorf("inserting into %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *PlayerStore) listNames(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
