// Package config loads the automation server settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// Config holds the automation settings.
type Config struct {
	TickInterval      time.Duration       `yaml:"tick_interval"`
	Pokeball          automation.Pokeball `yaml:"pokeball"`
	MinPokeballs      int                 `yaml:"min_pokeballs"`
	AllowBeastBall    bool                `yaml:"allow_beast_ball"`
	SkipShinyVitamins bool                `yaml:"skip_shiny_vitamins"`
	VitaminCacheSize  int                 `yaml:"vitamin_cache_size"`
	AutoVitamins      bool                `yaml:"auto_vitamins"`
	VitaminInterval   time.Duration       `yaml:"vitamin_interval"`
}

// Default returns the default settings.
func Default() Config {
	loop := cure.DefaultConfig()
	return Config{
		TickInterval:      loop.TickInterval,
		Pokeball:          automation.PokeballUltra,
		MinPokeballs:      loop.MinPokeballs,
		AllowBeastBall:    false,
		SkipShinyVitamins: true,
		VitaminCacheSize:  256,
		AutoVitamins:      false,
		VitaminInterval:   time.Second,
	}
}

// Load reads the settings at path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return Parse(b)
}

// Parse decodes YAML settings on top of the defaults.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if !c.Pokeball.IsValid() || c.Pokeball == automation.PokeballNone {
		return fmt.Errorf("unknown pokeball %q", c.Pokeball)
	}
	if c.MinPokeballs < 1 {
		return fmt.Errorf("min_pokeballs must be at least 1, got %d", c.MinPokeballs)
	}
	if c.VitaminCacheSize <= 0 {
		return fmt.Errorf("vitamin_cache_size must be positive, got %d", c.VitaminCacheSize)
	}
	if c.VitaminInterval <= 0 {
		return fmt.Errorf("vitamin_interval must be positive, got %s", c.VitaminInterval)
	}
	return nil
}

// Loop returns the cure loop settings.
func (c Config) Loop() cure.Config {
	return cure.Config{
		TickInterval: c.TickInterval,
		MinPokeballs: c.MinPokeballs,
	}
}
