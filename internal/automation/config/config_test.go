package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(missing)=%+v want defaults", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automation.yaml")
	content := `
tick_interval: 5s
pokeball: Greatball
allow_beast_ball: true
auto_vitamins: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickInterval != 5*time.Second || cfg.Pokeball != automation.PokeballGreat || !cfg.AllowBeastBall {
		t.Fatalf("Load()=%+v", cfg)
	}
	// Fields left out keep their defaults.
	if !cfg.AutoVitamins {
		t.Fatalf("Load()=%+v want auto vitamins on", cfg)
	}
	if cfg.MinPokeballs != 1 || !cfg.SkipShinyVitamins || cfg.VitaminCacheSize != 256 || cfg.VitaminInterval != time.Second {
		t.Fatalf("Load()=%+v lost defaults", cfg)
	}
	if loop := cfg.Loop(); loop.TickInterval != 5*time.Second || loop.MinPokeballs != 1 {
		t.Fatalf("Loop()=%+v", loop)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		yaml string
		want string
	}{
		{yaml: "tick_interval: 0s", want: "tick_interval"},
		{yaml: "pokeball: Rocketball", want: "unknown pokeball"},
		{yaml: "pokeball: None", want: "unknown pokeball"},
		{yaml: "min_pokeballs: -1", want: "min_pokeballs"},
		{yaml: "min_pokeballs: 0", want: "min_pokeballs"},
		{yaml: "vitamin_cache_size: 0", want: "vitamin_cache_size"},
		{yaml: "vitamin_interval: -1s", want: "vitamin_interval"},
		{yaml: "tick_interval: [", want: "parsing config"},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.yaml))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("Parse(%q) err=%v want containing %q", tc.yaml, err, tc.want)
		}
	}
}
